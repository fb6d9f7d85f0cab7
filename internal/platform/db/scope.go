package db

import (
	"fmt"

	"github.com/clinicindia/api/internal/platform/auth"
)

// Scoper builds the ownership predicate for a query so every listing and
// lookup goes through the same role logic. Columns name where the target
// table references patients, doctors, or users directly; a column left
// empty means the role has no path to the rows and is denied.
//
// Admins see everything. Patients and doctors are restricted to rows tied
// to their own profile via a user_id subquery, so the caller only needs the
// authenticated user id. Unknown roles match nothing.
type Scoper struct {
	PatientColumn string
	DoctorColumn  string
	UserColumn    string
}

// Predicate returns a SQL condition for ident starting at placeholder $argn,
// plus the arguments it consumes. An empty condition means no restriction.
func (s Scoper) Predicate(ident auth.Identity, argn int) (string, []interface{}) {
	switch ident.Role {
	case auth.RoleAdmin:
		return "", nil
	case auth.RolePatient:
		if s.PatientColumn != "" {
			cond := fmt.Sprintf("%s IN (SELECT id FROM patients WHERE user_id = $%d)", s.PatientColumn, argn)
			return cond, []interface{}{ident.ID}
		}
		if s.UserColumn != "" {
			return fmt.Sprintf("%s = $%d", s.UserColumn, argn), []interface{}{ident.ID}
		}
	case auth.RoleDoctor:
		if s.DoctorColumn != "" {
			cond := fmt.Sprintf("%s IN (SELECT id FROM doctors WHERE user_id = $%d)", s.DoctorColumn, argn)
			return cond, []interface{}{ident.ID}
		}
		if s.UserColumn != "" {
			return fmt.Sprintf("%s = $%d", s.UserColumn, argn), []interface{}{ident.ID}
		}
	}
	// No ownership path for this role: match nothing.
	return "FALSE", nil
}
