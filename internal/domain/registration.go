package domain

type (
	FullName = string
	Email    = string
	Password = string
	UnitId   = int
)

type UnitKind string

const (
	UnitKindCentral    UnitKind = "central"
	UnitKindGroupement UnitKind = "groupement"
)

// Field is the wire name of a registration form field.
type Field string

const (
	FieldFullName Field = "fullname"
	FieldEmail    Field = "steg_email"
	FieldPassword Field = "password"
	FieldUnitKind Field = "unit"
	FieldUnitId   Field = "unitid"
)

// Fields lists the recognized fields in form order.
var Fields = []Field{FieldFullName, FieldEmail, FieldPassword, FieldUnitKind, FieldUnitId}

func ParseField(s string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// RegistrationRequest is the candidate held by a sign-up form and the body of
// POST /api/auth/signup. UnitId is only meaningful for the current UnitKind.
type RegistrationRequest struct {
	FullName FullName `json:"fullname" validate:"required,min=6,max=50"`
	Email    Email    `json:"steg_email" validate:"required,email"`
	Password Password `json:"password" validate:"required,min=8,max=20,password_classes"`
	UnitKind UnitKind `json:"unit" validate:"required,oneof=central groupement"`
	UnitId   *UnitId  `json:"unitid" validate:"required,unit_option"`
}

// Clone returns a deep copy; UnitId is not shared with the original.
func (r RegistrationRequest) Clone() RegistrationRequest {
	if r.UnitId != nil {
		id := *r.UnitId
		r.UnitId = &id
	}
	return r
}
