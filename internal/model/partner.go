// Package model defines the records stored in the partners and requests collections
// and the acknowledgments returned for writes.
//
// Struct tags carry both encodings: `json` for the HTTP API and `bson` for MongoDB.
// Field names are camelCase in both so a document looks the same on the wire and
// in the store.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PartnerFields are the nine attributes a full-replace update overwrites.
// Anything not listed here (id, partnerCount, createdAt) is owned by the server.
type PartnerFields struct {
	Name             string  `json:"name"             bson:"name"`
	ProfileImage     string  `json:"profileImage"     bson:"profileImage"`
	Subject          string  `json:"subject"          bson:"subject"`
	StudyMode        string  `json:"studyMode"        bson:"studyMode"`
	AvailabilityTime string  `json:"availabilityTime" bson:"availabilityTime"`
	Location         string  `json:"location"         bson:"location"`
	ExperienceLevel  string  `json:"experienceLevel"  bson:"experienceLevel"`
	Rating           float64 `json:"rating"           bson:"rating"`
	Email            string  `json:"email"            bson:"email"`
}

// Partner is a user profile looking for study partners.
//
// EMBEDDING:
// PartnerFields is embedded, so its fields are promoted (p.Name works) and
// encoding/json flattens them into the same object. The bson ",inline" tag
// does the same thing for the Mongo encoder.
type Partner struct {
	ID bson.ObjectID `json:"_id" bson:"_id,omitempty"`

	PartnerFields `bson:",inline"`

	PartnerCount int64     `json:"partnerCount" bson:"partnerCount"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}
