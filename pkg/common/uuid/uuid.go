package uuid

import (
	"database/sql/driver"

	guuid "github.com/gofrs/uuid/v5"
)

// UUID wraps gofrs uuid so models and messages share one type with gorm/json support.
type UUID struct {
	guuid.UUID
}

var Nil = UUID{}

func NewV4() UUID {
	return UUID{UUID: guuid.Must(guuid.NewV4())}
}

func FromString(s string) (UUID, error) {
	u, err := guuid.FromString(s)
	if err != nil {
		return Nil, err
	}
	return UUID{UUID: u}, nil
}

func (u UUID) IsNil() bool {
	return u.UUID == guuid.Nil
}

func (u UUID) Value() (driver.Value, error) {
	if u.IsNil() {
		return nil, nil
	}
	return u.UUID.String(), nil
}

func (u *UUID) Scan(src any) error {
	if src == nil {
		u.UUID = guuid.Nil
		return nil
	}
	return u.UUID.Scan(src)
}
