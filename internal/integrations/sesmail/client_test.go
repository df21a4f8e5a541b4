package sesmail

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	out    *ses.SendEmailOutput
	err    error
	lastIn *ses.SendEmailInput
	calls  int
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.calls++
	f.lastIn = in
	return f.out, f.err
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "concierge@example.com")
	require.ErrorContains(t, err, "must not be nil")
	_, err = New(&fakeSES{}, " ")
	require.ErrorContains(t, err, "source")
}

func TestSend_HappyPath(t *testing.T) {
	api := &fakeSES{out: &ses.SendEmailOutput{MessageId: aws.String("ses-123")}}
	c, err := New(api, "concierge@example.com")
	require.NoError(t, err)

	id, err := c.Send(context.Background(), "guest@example.com", "Thai Restaurant Suggestions", "Hello!")
	require.NoError(t, err)
	require.Equal(t, "ses-123", id)

	in := api.lastIn
	require.Equal(t, "concierge@example.com", *in.Source)
	require.Equal(t, []string{"guest@example.com"}, in.Destination.ToAddresses)
	require.Equal(t, "Thai Restaurant Suggestions", *in.Message.Subject.Data)
	require.Equal(t, "Hello!", *in.Message.Body.Text.Data)
	require.Nil(t, in.Message.Body.Html)
}

func TestSend_Error(t *testing.T) {
	api := &fakeSES{err: errors.New("MessageRejected: Email address is not verified")}
	c, err := New(api, "concierge@example.com")
	require.NoError(t, err)
	_, err = c.Send(context.Background(), "guest@example.com", "s", "b")
	require.ErrorContains(t, err, "MessageRejected")
}

func TestSend_EmptyRecipient(t *testing.T) {
	api := &fakeSES{}
	c, err := New(api, "concierge@example.com")
	require.NoError(t, err)
	_, err = c.Send(context.Background(), " ", "s", "b")
	require.ErrorContains(t, err, "recipient")
	require.Zero(t, api.calls)
}

func TestSend_MissingMessageID(t *testing.T) {
	api := &fakeSES{out: &ses.SendEmailOutput{}}
	c, err := New(api, "concierge@example.com")
	require.NoError(t, err)
	_, err = c.Send(context.Background(), "guest@example.com", "s", "b")
	require.ErrorContains(t, err, "no message id")
}
