package gql

import (
	"github.com/geocoder89/userdesk/internal/domain/user"
	"github.com/graphql-go/graphql"
)

var roleEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "Role",
	Values: graphql.EnumValueConfigMap{
		string(user.RoleAdmin): &graphql.EnumValueConfig{Value: string(user.RoleAdmin)},
		string(user.RoleUser):  &graphql.EnumValueConfig{Value: string(user.RoleUser)},
	},
})

var statusEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "Status",
	Values: graphql.EnumValueConfigMap{
		string(user.StatusActive):   &graphql.EnumValueConfig{Value: string(user.StatusActive)},
		string(user.StatusInactive): &graphql.EnumValueConfig{Value: string(user.StatusInactive)},
	},
})

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"email":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"role":         &graphql.Field{Type: graphql.NewNonNull(roleEnum)},
		"status":       &graphql.Field{Type: graphql.NewNonNull(statusEnum)},
		"profilePhoto": &graphql.Field{Type: graphql.String},
		"location":     &graphql.Field{Type: graphql.String},
		"createdAt":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var userConnectionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UserConnection",
	Fields: graphql.Fields{
		"users":       &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType)))},
		"totalPages":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"currentPage": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalCount":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

// token is null on signup; the caller logs in separately.
var authPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuthPayload",
	Fields: graphql.Fields{
		"token": &graphql.Field{Type: graphql.String},
		"user":  &graphql.Field{Type: graphql.NewNonNull(userType)},
	},
})

var createUserInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CreateUserInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":         &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"email":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"password":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"role":         &graphql.InputObjectFieldConfig{Type: roleEnum},
		"status":       &graphql.InputObjectFieldConfig{Type: statusEnum},
		"profilePhoto": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"location":     &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var updateUserInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UpdateUserInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":         &graphql.InputObjectFieldConfig{Type: graphql.String},
		"email":        &graphql.InputObjectFieldConfig{Type: graphql.String},
		"role":         &graphql.InputObjectFieldConfig{Type: roleEnum},
		"status":       &graphql.InputObjectFieldConfig{Type: statusEnum},
		"profilePhoto": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"location":     &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

// presentUser flattens a record into the map the default field resolver
// reads. The password hash never reaches it.
func presentUser(u user.User) map[string]interface{} {
	out := map[string]interface{}{
		"id":           u.ID,
		"name":         u.Name,
		"email":        u.Email,
		"role":         string(u.Role),
		"status":       string(u.Status),
		"profilePhoto": nil,
		"location":     nil,
		"createdAt":    user.FormatTimestamp(u.CreatedAt),
	}

	if u.ProfilePhoto != nil {
		out["profilePhoto"] = *u.ProfilePhoto
	}
	if u.Location != nil {
		out["location"] = *u.Location
	}

	return out
}

func presentUsers(us []user.User) []interface{} {
	out := make([]interface{}, 0, len(us))
	for _, u := range us {
		out = append(out, presentUser(u))
	}
	return out
}

// argument decoding

func stringArg(args map[string]interface{}, key string) *string {
	v, ok := args[key].(string)
	if !ok {
		return nil
	}
	return &v
}

func roleArg(args map[string]interface{}, key string) *user.Role {
	v, ok := args[key].(string)
	if !ok {
		return nil
	}
	r := user.Role(v)
	return &r
}

func statusArg(args map[string]interface{}, key string) *user.Status {
	v, ok := args[key].(string)
	if !ok {
		return nil
	}
	s := user.Status(v)
	return &s
}

func intArg(args map[string]interface{}, key string) int {
	v, _ := args[key].(int)
	return v
}

func objectArg(args map[string]interface{}, key string) map[string]interface{} {
	v, _ := args[key].(map[string]interface{})
	return v
}

func createInputFrom(m map[string]interface{}) user.CreateUserInput {
	in := user.CreateUserInput{
		Role:         roleArg(m, "role"),
		Status:       statusArg(m, "status"),
		ProfilePhoto: stringArg(m, "profilePhoto"),
		Location:     stringArg(m, "location"),
	}
	if v := stringArg(m, "name"); v != nil {
		in.Name = *v
	}
	if v := stringArg(m, "email"); v != nil {
		in.Email = *v
	}
	if v := stringArg(m, "password"); v != nil {
		in.Password = *v
	}
	return in
}

func updateInputFrom(m map[string]interface{}) user.UpdateUserInput {
	return user.UpdateUserInput{
		Name:         stringArg(m, "name"),
		Email:        stringArg(m, "email"),
		Role:         roleArg(m, "role"),
		Status:       statusArg(m, "status"),
		ProfilePhoto: stringArg(m, "profilePhoto"),
		Location:     stringArg(m, "location"),
	}
}

func idsArg(args map[string]interface{}, key string) []string {
	raw, _ := args[key].([]interface{})
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
