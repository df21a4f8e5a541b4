package domain

// Restaurant is a catalog entry. It is written by the ingestion job and only
// read here.
type Restaurant struct {
	ID          string
	Name        string
	Address     string
	ZipCode     string
	Rating      float64
	ReviewCount int
}
