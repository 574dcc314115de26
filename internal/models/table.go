package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TableStatus string

const (
	TableFree     TableStatus = "FREE"
	TableOccupied TableStatus = "OCCUPIED"
	TableReserved TableStatus = "RESERVED"
	TableClosed   TableStatus = "CLOSED"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableFree, TableOccupied, TableReserved, TableClosed:
		return true
	}
	return false
}

// Reservation is only present while the table is RESERVED.
type Reservation struct {
	Name   string `bson:"name" json:"name"`
	Phone  string `bson:"phone,omitempty" json:"phone,omitempty"`
	Date   string `bson:"date" json:"date"`
	Time   string `bson:"time" json:"time"`
	Guests int    `bson:"guests,omitempty" json:"guests,omitempty"`
}

type Table struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Number       int                `bson:"number" json:"number"`
	Status       TableStatus        `bson:"status" json:"status"`
	Reservation  *Reservation       `bson:"reservation,omitempty" json:"reservation,omitempty"`
	ClosedReason string             `bson:"closedReason,omitempty" json:"closedReason,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
