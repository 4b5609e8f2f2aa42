package user

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUserInput struct {
	Name         string  `json:"name" validate:"required,min=2,max=120"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=6,max=72"`
	Role         *Role   `json:"role" validate:"omitempty,oneof=ADMIN USER"`
	Status       *Status `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	ProfilePhoto *string `json:"profilePhoto" validate:"omitempty,url"`
	Location     *string `json:"location" validate:"omitempty,max=120"`
}

// a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=120"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Role         *Role   `json:"role" validate:"omitempty,oneof=ADMIN USER"`
	Status       *Status `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	ProfilePhoto *string `json:"profilePhoto" validate:"omitempty,url"`
	Location     *string `json:"location" validate:"omitempty,max=120"`
}

// Empty reports whether the update carries no fields at all.
func (in UpdateUserInput) Empty() bool {
	return in.Name == nil && in.Email == nil && in.Role == nil && in.Status == nil &&
		in.ProfilePhoto == nil && in.Location == nil
}

// Apply merges the set fields of the update into u.
func (in UpdateUserInput) Apply(u User) User {
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.Status != nil {
		u.Status = *in.Status
	}
	if in.ProfilePhoto != nil {
		u.ProfilePhoto = in.ProfilePhoto
	}
	if in.Location != nil {
		u.Location = in.Location
	}
	return u
}

type ListUsersInput struct {
	Page   int     `form:"page" validate:"min=1"`
	Limit  int     `form:"limit" validate:"min=1,max=500"`
	Search *string `form:"search"`
	Role   *Role   `form:"role" validate:"omitempty,oneof=ADMIN USER"`
	Status *Status `form:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

type ExportUsersInput struct {
	Search *string `form:"search"`
	Role   *Role   `form:"role" validate:"omitempty,oneof=ADMIN USER"`
	Status *Status `form:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

type BatchDeleteInput struct {
	IDs []string `json:"ids"`
}
