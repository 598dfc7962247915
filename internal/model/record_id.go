package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidID = errors.New("invalid id")

// RecordID identifies users and files in every metadata backend. It is a
// document id (12 bytes, 24 hex characters on the wire). The zero value
// stands for "no record", which for a parent means the root.
type RecordID primitive.ObjectID

func NewRecordID() RecordID {
	return RecordID(primitive.NewObjectID())
}

// ParseRecordID validates an id coming from outside the process
func ParseRecordID(s string) (RecordID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return RecordID{}, fmt.Errorf("%w %q", ErrInvalidID, s)
	}

	return RecordID(oid), nil
}

// ParseParentID accepts what clients send as a parent reference: nothing,
// the number 0, the string "0" or a record id.
func ParseParentID(v any) (RecordID, error) {
	switch p := v.(type) {
	case nil:
		return RecordID{}, nil
	case float64:
		if p == 0 {
			return RecordID{}, nil
		}
	case int:
		if p == 0 {
			return RecordID{}, nil
		}
	case string:
		if p == "" || p == "0" {
			return RecordID{}, nil
		}

		return ParseRecordID(p)
	}

	return RecordID{}, fmt.Errorf("%w %v", ErrInvalidID, v)
}

func (id RecordID) IsZero() bool {
	return id == RecordID{}
}

func (id RecordID) ObjectID() primitive.ObjectID {
	return primitive.ObjectID(id)
}

func (id RecordID) String() string {
	if id.IsZero() {
		return ""
	}

	return primitive.ObjectID(id).Hex()
}

func (id RecordID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *RecordID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == "" {
		*id = RecordID{}
		return nil
	}

	parsed, err := ParseRecordID(s)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

// Value implements the driver.Valuer interface.
// Ids are kept as their hex form so they sort in creation order.
func (id RecordID) Value() (driver.Value, error) {
	return id.String(), nil
}

// Scan implements the sql.Scanner interface.
func (id *RecordID) Scan(value any) error {
	if value == nil {
		*id = RecordID{}
		return nil
	}

	str, ok := value.(string)
	if !ok {
		b, ok := value.([]byte)
		if !ok {
			return fmt.Errorf("failed to scan RecordID, %v", value)
		}

		str = string(b)
	}

	if str == "" {
		*id = RecordID{}
		return nil
	}

	parsed, err := ParseRecordID(str)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

// MarshalBSONValue stores ids as native ObjectIDs. The zero id is written
// as the integer 0, which is how root level parents are kept.
func (id RecordID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if id.IsZero() {
		return bson.MarshalValue(int32(0))
	}

	return bson.MarshalValue(primitive.ObjectID(id))
}

func (id *RecordID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.ObjectID:
		*id = RecordID(raw.ObjectID())
	case bsontype.Int32, bsontype.Int64, bsontype.Double, bsontype.Null, bsontype.Undefined:
		*id = RecordID{}
	case bsontype.String:
		s := raw.StringValue()
		if s == "" || s == "0" {
			*id = RecordID{}
			return nil
		}

		parsed, err := ParseRecordID(s)
		if err != nil {
			return err
		}
		*id = parsed
	default:
		return fmt.Errorf("failed to decode RecordID from bson %v", t)
	}

	return nil
}
