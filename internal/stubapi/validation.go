package stubapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// fieldDetail is one entry of the structured validation payload, shaped like
// the real backend's responses so the client parses both identically
type fieldDetail struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

// fieldMessages maps validator tags to the backend's human-readable messages
var fieldMessages = map[string]string{
	"required":    "Field required",
	"email":       "Invalid email address",
	"min":         "Value too short",
	"max":         "Value too long",
	"phone9":      "Phone number must be 9 digits",
	"passwordmix": "Password must contain at least one letter and one digit",
}

// checkStruct validates a request struct and, on failure, writes the 422
// field-error payload. Returns false when the request was rejected.
func (s *Server) checkStruct(c *gin.Context, req any) bool {
	err := s.validate.Struct(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return false
	}

	details := make([]fieldDetail, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		details = append(details, fieldDetail{
			Loc: []string{"body", jsonFieldName(req, fe)},
			Msg: msg,
		})
	}

	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": details})
	return false
}

// jsonFieldName resolves the wire name for a failed field via its json tag
func jsonFieldName(req any, fe validator.FieldError) string {
	// fe.Field() is the Go name; the request structs keep json tags aligned
	// with snake_case wire names, which StructNamespace doesn't expose, so
	// translate the common cases directly
	switch fe.Field() {
	case "FullName":
		return "full_name"
	case "AvailabilityType":
		return "availability_type"
	case "ReportTypeID":
		return "report_type_id"
	case "ReporterEmail":
		return "reporter_email"
	case "Email":
		return "email"
	case "Password":
		return "password"
	case "Phone":
		return "phone"
	case "City":
		return "city"
	case "Address":
		return "address"
	case "Problem":
		return "problem"
	case "ReportDetails":
		return "report_details"
	case "Age":
		return "age"
	default:
		return fe.Field()
	}
}
