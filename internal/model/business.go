package model

import "time"

// Business is the tenant. Every domain row is partitioned by its id, and the
// id is passed explicitly into every repository and service call; nothing is
// inferred from ambient request state.
type Business struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func (Business) TableName() string { return "businesses" }
