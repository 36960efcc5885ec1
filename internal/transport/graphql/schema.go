package graphqltransport

import (
	"errors"
	"time"

	"github.com/graphql-go/graphql"

	"issuetracker/internal/domain"
	"issuetracker/internal/service"
)

func newSchema(svc service.Service) (graphql.Schema, error) {
	issueStatusEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "IssueStatus",
		Values: graphql.EnumValueConfigMap{
			"OPEN":        &graphql.EnumValueConfig{Value: string(domain.StatusOpen)},
			"ASSIGNED":    &graphql.EnumValueConfig{Value: string(domain.StatusAssigned)},
			"IN_PROGRESS": &graphql.EnumValueConfig{Value: string(domain.StatusInProgress)},
			"RESOLVED":    &graphql.EnumValueConfig{Value: string(domain.StatusResolved)},
			"CLOSED":      &graphql.EnumValueConfig{Value: string(domain.StatusClosed)},
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.User).ID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.User).Name, nil
				},
			},
			"email": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.User).Email, nil
				},
			},
		},
	})

	issueType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Issue",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Issue).ID, nil
				},
			},
			"title": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Issue).Title, nil
				},
			},
			"description": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Issue).Description, nil
				},
			},
			"status": &graphql.Field{
				Type: graphql.NewNonNull(issueStatusEnum),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return string(p.Source.(domain.Issue).Status), nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Issue).CreatedAt.Format(time.RFC3339), nil
				},
			},
			"updatedAt": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Issue).UpdatedAt.Format(time.RFC3339), nil
				},
			},
		},
	})

	commentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Comment",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Comment).ID, nil
				},
			},
			"content": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Comment).Content, nil
				},
			},
			"createdAt": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Comment).CreatedAt.Format(time.RFC3339), nil
				},
			},
		},
	})

	tokenType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Token",
		Fields: graphql.Fields{
			"value": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Token).Value, nil
				},
			},
		},
	})

	// Relational fields are registered after construction so the three types
	// can reference each other. Each is a lazy secondary lookup keyed on the
	// reference stored on the parent record.
	userType.AddFieldConfig("assignedIssues", &graphql.Field{
		Type: graphql.NewList(issueType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			user := p.Source.(domain.User)
			issues := make([]domain.Issue, 0, len(user.AssignedIssueIDs))
			for _, id := range user.AssignedIssueIDs {
				issue, err := svc.GetIssue(p.Context, id)
				if err != nil {
					if errors.Is(err, domain.ErrIssueNotFound) {
						continue
					}
					return nil, mapError(err)
				}
				issues = append(issues, issue)
			}
			return issues, nil
		},
	})

	issueType.AddFieldConfig("assignedTo", &graphql.Field{
		Type: userType,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			issue := p.Source.(domain.Issue)
			if issue.AssignedTo == nil {
				return nil, nil
			}
			user, err := svc.GetUser(p.Context, *issue.AssignedTo)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return nil, nil
				}
				return nil, mapError(err)
			}
			return user, nil
		},
	})

	issueType.AddFieldConfig("comments", &graphql.Field{
		Type: graphql.NewList(commentType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			issue := p.Source.(domain.Issue)
			comments, err := svc.ListComments(p.Context, issue.ID)
			if err != nil {
				return nil, mapError(err)
			}
			return comments, nil
		},
	})

	commentType.AddFieldConfig("author", &graphql.Field{
		Type: graphql.NewNonNull(userType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			comment := p.Source.(domain.Comment)
			user, err := svc.GetUser(p.Context, comment.AuthorID)
			if err != nil {
				return nil, mapError(err)
			}
			return user, nil
		},
	})

	commentType.AddFieldConfig("issue", &graphql.Field{
		Type: graphql.NewNonNull(issueType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			comment := p.Source.(domain.Comment)
			issue, err := svc.GetIssue(p.Context, comment.IssueID)
			if err != nil {
				return nil, mapError(err)
			}
			return issue, nil
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"dummy": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return "Hello, GraphQL", nil
				},
			},
			"issuesCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Args: graphql.FieldConfigArgument{
					"status": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var status *string
					if s, ok := p.Args["status"].(string); ok {
						status = &s
					}
					count, err := svc.IssuesCount(p.Context, status)
					if err != nil {
						return nil, mapError(err)
					}
					return count, nil
				},
			},
			"issues": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(issueType))),
				Args: graphql.FieldConfigArgument{
					"status":     &graphql.ArgumentConfig{Type: graphql.String},
					"assignedTo": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var filter domain.IssueFilter
					if s, ok := p.Args["status"].(string); ok {
						filter.Status = &s
					}
					if a, ok := p.Args["assignedTo"].(string); ok {
						filter.AssignedTo = &a
					}
					issues, err := svc.ListIssues(p.Context, filter)
					if err != nil {
						return nil, mapError(err)
					}
					return issues, nil
				},
			},
			"issue": &graphql.Field{
				Type: graphql.NewNonNull(issueType),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					issue, err := svc.GetIssue(p.Context, id)
					if err != nil {
						return nil, mapError(err)
					}
					return issue, nil
				},
			},
			"users": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					users, err := svc.ListUsers(p.Context)
					if err != nil {
						return nil, mapError(err)
					}
					return users, nil
				},
			},
			"user": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					user, err := svc.GetUser(p.Context, id)
					if err != nil {
						return nil, mapError(err)
					}
					return user, nil
				},
			},
			"me": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					user, ok := CurrentUser(p.Context)
					if !ok {
						return nil, nil
					}
					return user, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"name":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name, _ := p.Args["name"].(string)
					email, _ := p.Args["email"].(string)
					password, _ := p.Args["password"].(string)
					user, err := svc.CreateUser(p.Context, name, email, password)
					if err != nil {
						return nil, mapError(err)
					}
					return user, nil
				},
			},
			"login": &graphql.Field{
				Type: tokenType,
				Args: graphql.FieldConfigArgument{
					"name":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name, _ := p.Args["name"].(string)
					password, _ := p.Args["password"].(string)
					token, err := svc.Login(p.Context, name, password)
					if err != nil {
						return nil, mapError(err)
					}
					return token, nil
				},
			},
			"deleteUser": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					user, err := svc.DeleteUser(p.Context, id)
					if err != nil {
						return nil, mapError(err)
					}
					return user, nil
				},
			},
			"createIssue": &graphql.Field{
				Type: graphql.NewNonNull(issueType),
				Args: graphql.FieldConfigArgument{
					"title":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"description": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					title, _ := p.Args["title"].(string)
					description, _ := p.Args["description"].(string)
					issue, err := svc.CreateIssue(p.Context, title, description)
					if err != nil {
						return nil, mapError(err)
					}
					return issue, nil
				},
			},
			"updateIssueStatus": &graphql.Field{
				Type: graphql.NewNonNull(issueType),
				Args: graphql.FieldConfigArgument{
					"id":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"status": &graphql.ArgumentConfig{Type: graphql.NewNonNull(issueStatusEnum)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					status, _ := p.Args["status"].(string)
					issue, err := svc.UpdateIssueStatus(p.Context, id, domain.IssueStatus(status))
					if err != nil {
						return nil, mapError(err)
					}
					return issue, nil
				},
			},
			"assignIssue": &graphql.Field{
				Type: graphql.NewNonNull(issueType),
				Args: graphql.FieldConfigArgument{
					"id":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					userID, _ := p.Args["userId"].(string)
					issue, err := svc.AssignIssue(p.Context, id, userID)
					if err != nil {
						return nil, mapError(err)
					}
					return issue, nil
				},
			},
			"addComment": &graphql.Field{
				Type: graphql.NewNonNull(commentType),
				Args: graphql.FieldConfigArgument{
					"content": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"author":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"issueId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					content, _ := p.Args["content"].(string)
					author, _ := p.Args["author"].(string)
					issueID, _ := p.Args["issueId"].(string)
					comment, err := svc.AddComment(p.Context, content, author, issueID)
					if err != nil {
						return nil, mapError(err)
					}
					return comment, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}
