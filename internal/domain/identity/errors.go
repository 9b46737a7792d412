package identity

import "github.com/BruksfildServices01/volunteer-scheduler/internal/httperr"

var (
	ErrUserNotFound         = httperr.ErrBusiness("user_not_found")
	ErrOrganizationNotFound = httperr.ErrBusiness("organization_not_found")
	ErrAlreadyExists        = httperr.ErrBusiness("already_exists")
	ErrForbiddenRole        = httperr.ErrBusiness("forbidden_role")
)
