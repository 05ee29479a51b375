package model

import "time"

type OwnerKind string

const (
	OwnerUserProfile OwnerKind = "user-profile"
	OwnerPostCover   OwnerKind = "post-cover"
)

func (k OwnerKind) Valid() bool {
	return k == OwnerUserProfile || k == OwnerPostCover
}

// MediaSlot links one owner to one remote object. There is at most one slot
// per (OwnerID, OwnerKind).
type MediaSlot struct {
	PublicID  string    `json:"public_id"`
	URL       string    `json:"url"`
	OwnerID   string    `json:"owner_id"`
	OwnerKind OwnerKind `json:"owner_kind"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DesiredMedia is the tri-state media value of a create or update request:
// absent (field not sent), empty (remove) or a non-empty source.
type DesiredMedia struct {
	present bool
	value   string
}

func AbsentMedia() DesiredMedia {
	return DesiredMedia{}
}

func MediaValue(value string) DesiredMedia {
	return DesiredMedia{present: true, value: value}
}

// MediaFromField maps an optional JSON field: nil means the field was not sent.
func MediaFromField(field *string) DesiredMedia {
	if field == nil {
		return AbsentMedia()
	}
	return MediaValue(*field)
}

func (d DesiredMedia) Absent() bool {
	return !d.present
}

func (d DesiredMedia) Empty() bool {
	return d.present && d.value == ""
}

func (d DesiredMedia) Value() string {
	return d.value
}
