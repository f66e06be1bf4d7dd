package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Request is one user's request to study with a partner.
// PartnerID is a loose reference: nothing checks that the partner exists.
type Request struct {
	ID           bson.ObjectID `json:"_id"          bson:"_id,omitempty"`
	PartnerID    string        `json:"partnerId"    bson:"partnerId"`
	PartnerName  string        `json:"partnerName"  bson:"partnerName"`
	PartnerEmail string        `json:"partnerEmail" bson:"partnerEmail"`
	ProfileImage string        `json:"profileImage" bson:"profileImage"`
	Subject      string        `json:"subject"      bson:"subject"`
	StudyMode    string        `json:"studyMode"    bson:"studyMode"`
	Message      string        `json:"message"      bson:"message"`
	Status       string        `json:"status"       bson:"status"`
	UserEmail    string        `json:"userEmail"    bson:"userEmail"`
	CreatedAt    time.Time     `json:"createdAt"    bson:"createdAt"`
}

// RequestPatch is a partial update. A nil field is left untouched in the store.
type RequestPatch struct {
	PartnerID    *string `json:"partnerId,omitempty"`
	PartnerName  *string `json:"partnerName,omitempty"`
	PartnerEmail *string `json:"partnerEmail,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
	Subject      *string `json:"subject,omitempty"`
	StudyMode    *string `json:"studyMode,omitempty"`
	Message      *string `json:"message,omitempty"`
	Status       *string `json:"status,omitempty"`
	UserEmail    *string `json:"userEmail,omitempty"`
}

// Fields returns the present keys, named as they are stored.
// Stores build their update statement from this map.
func (p RequestPatch) Fields() map[string]string {
	fields := make(map[string]string)
	set := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	set("partnerId", p.PartnerID)
	set("partnerName", p.PartnerName)
	set("partnerEmail", p.PartnerEmail)
	set("profileImage", p.ProfileImage)
	set("subject", p.Subject)
	set("studyMode", p.StudyMode)
	set("message", p.Message)
	set("status", p.Status)
	set("userEmail", p.UserEmail)
	return fields
}

// IsEmpty reports whether the patch carries no fields at all.
func (p RequestPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}
