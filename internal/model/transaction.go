package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Transaction is a recorded transaction in the user's history. The history
// store is read by the core only to compute category priors.
type Transaction struct {
	Date       time.Time
	ID         string
	Note       string
	Direction  Direction
	Hash       string
	Amount     int64
	CategoryID int64
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%d:%s:%d:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Note,
		t.CategoryID,
		t.Direction)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// CategoryFrequency is the number of history transactions in one category.
type CategoryFrequency struct {
	CategoryID int64
	Count      int
}
