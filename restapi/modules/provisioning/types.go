// Package provisioning defines the REST request and response types for account batches.
package provisioning

import "github.com/ortelius/media-provisioner/model"

// UsersRequest is the body of POST and DELETE /api/v1/users
type UsersRequest struct {
	Usernames []string `json:"usernames"`
}

// UsersResponse reports a finished batch
type UsersResponse struct {
	Success   bool                       `json:"success"`
	Action    model.Action               `json:"action"`
	Report    string                     `json:"report"`
	Succeeded map[model.Backend][]string `json:"succeeded"`
	Outcomes  []model.Outcome            `json:"outcomes"`
}
