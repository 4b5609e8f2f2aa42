package gql

import (
	"context"
	"log/slog"

	"github.com/geocoder89/userdesk/internal/actorctx"
	"github.com/geocoder89/userdesk/internal/auth"
	"github.com/geocoder89/userdesk/internal/domain/user"
	"github.com/geocoder89/userdesk/internal/service"
	"github.com/graphql-go/graphql"
)

type AuthAPI interface {
	Login(ctx context.Context, in user.LoginInput) (service.AuthResult, error)
	Signup(ctx context.Context, in user.CreateUserInput) (service.AuthResult, error)
}

type UsersAPI interface {
	List(ctx context.Context, actor *auth.Claims, in user.ListUsersInput) (user.Page, error)
	Export(ctx context.Context, actor *auth.Claims, in user.ExportUsersInput) ([]user.User, error)
	Get(ctx context.Context, actor *auth.Claims, id string) (user.User, error)
	Me(ctx context.Context, actor *auth.Claims) (user.User, error)
	Create(ctx context.Context, actor *auth.Claims, in user.CreateUserInput) (user.User, error)
	Update(ctx context.Context, actor *auth.Claims, id string, in user.UpdateUserInput) (user.User, error)
	Delete(ctx context.Context, actor *auth.Claims, id string) (bool, error)
	DeleteMany(ctx context.Context, actor *auth.Claims, ids []string) (user.BatchDeleteResult, error)
}

type resolver struct {
	auth  AuthAPI
	users UsersAPI
	log   *slog.Logger
}

// NewSchema builds the executable schema. Resolvers read the caller from the
// request context (see actorctx) and pass it to the services.
func NewSchema(authSvc AuthAPI, users UsersAPI, log *slog.Logger) (graphql.Schema, error) {
	if log == nil {
		log = slog.Default()
	}
	r := &resolver{auth: authSvc, users: users, log: log}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"users": &graphql.Field{
				Type: graphql.NewNonNull(userConnectionType),
				Args: graphql.FieldConfigArgument{
					"page":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"limit":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"search": &graphql.ArgumentConfig{Type: graphql.String},
					"role":   &graphql.ArgumentConfig{Type: roleEnum},
					"status": &graphql.ArgumentConfig{Type: statusEnum},
				},
				Resolve: r.listUsers,
			},
			"user": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.getUser,
			},
			"exportUsers": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
				Args: graphql.FieldConfigArgument{
					"search": &graphql.ArgumentConfig{Type: graphql.String},
					"role":   &graphql.ArgumentConfig{Type: roleEnum},
					"status": &graphql.ArgumentConfig{Type: statusEnum},
				},
				Resolve: r.exportUsers,
			},
			"me": &graphql.Field{
				Type:    userType,
				Resolve: r.me,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"login": &graphql.Field{
				Type: graphql.NewNonNull(authPayloadType),
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.login,
			},
			"signup": &graphql.Field{
				Type: graphql.NewNonNull(authPayloadType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createUserInputType)},
				},
				Resolve: r.signup,
			},
			"createUser": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createUserInputType)},
				},
				Resolve: r.createUser,
			},
			"updateUser": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateUserInputType)},
				},
				Resolve: r.updateUser,
			},
			"deleteUser": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.deleteUser,
			},
			"deleteMultipleUsers": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"ids": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
				},
				Resolve: r.deleteMultipleUsers,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

func (r *resolver) listUsers(p graphql.ResolveParams) (interface{}, error) {
	in := user.ListUsersInput{
		Page:   intArg(p.Args, "page"),
		Limit:  intArg(p.Args, "limit"),
		Search: stringArg(p.Args, "search"),
		Role:   roleArg(p.Args, "role"),
		Status: statusArg(p.Args, "status"),
	}

	page, err := r.users.List(p.Context, actorctx.ClaimsFrom(p.Context), in)
	if err != nil {
		return nil, toError(p.Context, r.log, "users", err)
	}

	return map[string]interface{}{
		"users":       presentUsers(page.Users),
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
		"totalCount":  page.TotalCount,
	}, nil
}

func (r *resolver) getUser(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)

	u, err := r.users.Get(p.Context, actorctx.ClaimsFrom(p.Context), id)
	if err != nil {
		return nil, toError(p.Context, r.log, "user", err)
	}
	return presentUser(u), nil
}

func (r *resolver) exportUsers(p graphql.ResolveParams) (interface{}, error) {
	in := user.ExportUsersInput{
		Search: stringArg(p.Args, "search"),
		Role:   roleArg(p.Args, "role"),
		Status: statusArg(p.Args, "status"),
	}

	us, err := r.users.Export(p.Context, actorctx.ClaimsFrom(p.Context), in)
	if err != nil {
		return nil, toError(p.Context, r.log, "exportUsers", err)
	}
	return presentUsers(us), nil
}

func (r *resolver) me(p graphql.ResolveParams) (interface{}, error) {
	u, err := r.users.Me(p.Context, actorctx.ClaimsFrom(p.Context))
	if err != nil {
		return nil, toError(p.Context, r.log, "me", err)
	}
	return presentUser(u), nil
}

func (r *resolver) login(p graphql.ResolveParams) (interface{}, error) {
	in := user.LoginInput{}
	if v := stringArg(p.Args, "email"); v != nil {
		in.Email = *v
	}
	if v := stringArg(p.Args, "password"); v != nil {
		in.Password = *v
	}

	res, err := r.auth.Login(p.Context, in)
	if err != nil {
		return nil, toError(p.Context, r.log, "login", err)
	}

	return map[string]interface{}{
		"token": res.Token,
		"user":  presentUser(res.User),
	}, nil
}

func (r *resolver) signup(p graphql.ResolveParams) (interface{}, error) {
	res, err := r.auth.Signup(p.Context, createInputFrom(objectArg(p.Args, "input")))
	if err != nil {
		return nil, toError(p.Context, r.log, "signup", err)
	}

	return map[string]interface{}{
		"token": nil,
		"user":  presentUser(res.User),
	}, nil
}

func (r *resolver) createUser(p graphql.ResolveParams) (interface{}, error) {
	u, err := r.users.Create(p.Context, actorctx.ClaimsFrom(p.Context), createInputFrom(objectArg(p.Args, "input")))
	if err != nil {
		return nil, toError(p.Context, r.log, "createUser", err)
	}
	return presentUser(u), nil
}

func (r *resolver) updateUser(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)

	u, err := r.users.Update(p.Context, actorctx.ClaimsFrom(p.Context), id, updateInputFrom(objectArg(p.Args, "input")))
	if err != nil {
		return nil, toError(p.Context, r.log, "updateUser", err)
	}
	return presentUser(u), nil
}

func (r *resolver) deleteUser(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)

	ok, err := r.users.Delete(p.Context, actorctx.ClaimsFrom(p.Context), id)
	if err != nil {
		return nil, toError(p.Context, r.log, "deleteUser", err)
	}
	return ok, nil
}

func (r *resolver) deleteMultipleUsers(p graphql.ResolveParams) (interface{}, error) {
	_, err := r.users.DeleteMany(p.Context, actorctx.ClaimsFrom(p.Context), idsArg(p.Args, "ids"))
	if err != nil {
		return nil, toError(p.Context, r.log, "deleteMultipleUsers", err)
	}
	return true, nil
}
