package ids

import (
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Uppercase, without 0/O and 1/I.
const referenceAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const referenceLength = 8

// BookingReference returns a short public code for a booking.
func BookingReference() (string, error) {
	return gonanoid.Generate(referenceAlphabet, referenceLength)
}

func RequestID() string {
	return uuid.NewString()
}
