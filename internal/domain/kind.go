package domain

// Kind identifies an entity kind for kind-parameterized operations such as
// the soft-delete lifecycle, reference validation and cache invalidation.
// Kind values double as cache key prefixes.
type Kind string

const (
	KindOffice         Kind = "office"
	KindSpecialization Kind = "specialization"
	KindDoctor         Kind = "doctor"
	KindPatient        Kind = "patient"
	KindPatientCard    Kind = "patient_card"
	KindAppointment    Kind = "appointment"
)

// Kinds lists every soft-deletable entity kind.
func Kinds() []Kind {
	return []Kind{
		KindOffice,
		KindSpecialization,
		KindDoctor,
		KindPatient,
		KindPatientCard,
		KindAppointment,
	}
}
