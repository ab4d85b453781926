package models

import "github.com/google/uuid"

// Base carries the document id shared by every stored model.
type Base struct {
	ID string `bson:"_id,omitempty" json:"id,omitempty"`
}

// GenIDIfEmpty assigns a fresh id unless one is already set.
func (m *Base) GenIDIfEmpty() {
	if m.ID == "" {
		m.GenID()
	}
}

func (m *Base) GenID() {
	m.ID = uuid.NewString()
}

func NewBase() Base {
	return Base{ID: uuid.NewString()}
}
