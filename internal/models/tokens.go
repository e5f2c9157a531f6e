package models

// TokenCount is an approximate count of lexical units in a text
type TokenCount struct {
	Count    int    `json:"count"`
	Strategy string `json:"strategy"`
}
