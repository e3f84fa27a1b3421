// Package rest provides typed JSON helpers over an httpclient.Client.
//
// Unlike the core terminals, the helpers report HTTP error statuses as
// errors, and an empty body decodes to the zero value:
//
//	client, _ := rest.New(httpclient.Config{BaseURL: "https://api.example.com"})
//
//	user, err := rest.Get[User](ctx, client, "/users/{id}", rest.WithRouteParam("id", "123"))
//	if rest.IsNotFound(err) {
//	    // user.Body holds the decoded error payload when it matched User
//	}
//
//	created, err := rest.Post[User](ctx, client, "/users", CreateUser{Name: "Alice"})
package rest
