// Package backendtest provides in-memory Emby, Jellyfin and Jellyseerr servers for tests.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// MediaServer fakes the Emby/Jellyfin user API
type MediaServer struct {
	URL        string
	AuthHeader string
	APIKey     string

	// Status overrides; zero means behave normally
	ListStatus     int
	CreateStatus   int
	PasswordStatus int
	DeleteStatus   int
	// FailCreateFor makes creation fail for these lower-cased names
	FailCreateFor map[string]bool

	mu        sync.Mutex
	users     []mediaUser
	passwords map[string]string
	copied    map[string]string
	requests  []string
	nextID    int
}

type mediaUser struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// NewMediaServer starts a fake media server seeded with the given usernames
func NewMediaServer(t *testing.T, authHeader, apiKey string, usernames ...string) *MediaServer {
	t.Helper()
	s := &MediaServer{
		AuthHeader:    authHeader,
		APIKey:        apiKey,
		FailCreateFor: map[string]bool{},
		passwords:     map[string]string{},
		copied:        map[string]string{},
	}
	for _, name := range usernames {
		s.addUser(name)
	}
	srv := httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(srv.Close)
	s.URL = srv.URL
	return s
}

func (s *MediaServer) addUser(name string) mediaUser {
	s.nextID++
	u := mediaUser{ID: fmt.Sprintf("%032x", s.nextID), Name: name}
	s.users = append(s.users, u)
	return u
}

// Requests returns "METHOD /path" for every request received
func (s *MediaServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Usernames returns the names of the accounts currently on the server
func (s *MediaServer) Usernames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := []string{}
	for _, u := range s.users {
		names = append(names, u.Name)
	}
	return names
}

// Password returns the password last set for a username
func (s *MediaServer) Password(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Name, name) {
			return s.passwords[u.ID]
		}
	}
	return ""
}

// CopiedFrom returns the template id a username was cloned from
func (s *MediaServer) CopiedFrom(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Name, name) {
			return s.copied[u.ID]
		}
	}
	return ""
}

// UserID returns the id of a username or ""
func (s *MediaServer) UserID(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Name, name) {
			return u.ID
		}
	}
	return ""
}

func (s *MediaServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)

	if r.Header.Get(s.AuthHeader) != s.APIKey {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/Users":
		if s.ListStatus != 0 {
			w.WriteHeader(s.ListStatus)
			return
		}
		writeJSON(w, http.StatusOK, s.users)

	case r.Method == http.MethodPost && r.URL.Path == "/Users/New":
		var body struct {
			Name           string
			Password       string
			CopyFromUserID string `json:"CopyFromUserId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if s.CreateStatus != 0 || s.FailCreateFor[strings.ToLower(body.Name)] {
			status := s.CreateStatus
			if status == 0 {
				status = http.StatusInternalServerError
			}
			w.WriteHeader(status)
			return
		}
		u := s.addUser(body.Name)
		s.passwords[u.ID] = body.Password
		s.copied[u.ID] = body.CopyFromUserID
		writeJSON(w, http.StatusOK, u)

	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "Users" && parts[2] == "Password":
		if s.PasswordStatus != 0 {
			w.WriteHeader(s.PasswordStatus)
			return
		}
		var body struct{ NewPw string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.passwords[parts[1]] = body.NewPw
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodDelete && len(parts) == 2 && parts[0] == "Users":
		if s.DeleteStatus != 0 {
			w.WriteHeader(s.DeleteStatus)
			return
		}
		for i, u := range s.users {
			if u.ID == parts[1] {
				s.users = append(s.users[:i], s.users[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// RequestManager fakes the Jellyseerr user API. Its Jellyfin view is read
// from Linked when set, so imports only see accounts Jellyfin really has.
type RequestManager struct {
	URL    string
	APIKey string
	Linked *MediaServer

	ListStatus         int
	JellyfinListStatus int
	ImportStatus       int
	// DeleteStatus is the success status returned on delete (200 or 204)
	DeleteStatus int

	mu       sync.Mutex
	users    []requestUser
	requests []string
	nextID   int
}

type requestUser struct {
	ID               int    `json:"id"`
	Username         string `json:"username,omitempty"`
	JellyfinUsername string `json:"jellyfinUsername"`
	JellyfinUserID   string `json:"jellyfinUserId"`
}

// NewRequestManager starts a fake Jellyseerr seeded with the given usernames
func NewRequestManager(t *testing.T, apiKey string, linked *MediaServer, usernames ...string) *RequestManager {
	t.Helper()
	s := &RequestManager{APIKey: apiKey, Linked: linked, DeleteStatus: http.StatusNoContent}
	for _, name := range usernames {
		s.nextID++
		s.users = append(s.users, requestUser{ID: s.nextID, JellyfinUsername: name})
	}
	srv := httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(srv.Close)
	s.URL = srv.URL
	return s
}

// AddLocalUser seeds an account that was created in Jellyseerr itself and
// has no Jellyfin link
func (s *RequestManager) AddLocalUser(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.users = append(s.users, requestUser{ID: s.nextID, Username: username})
}

// Requests returns "METHOD /path" for every request received
func (s *RequestManager) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Usernames returns the names of imported accounts
func (s *RequestManager) Usernames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := []string{}
	for _, u := range s.users {
		names = append(names, u.JellyfinUsername)
	}
	return names
}

func (s *RequestManager) jellyfinView() []map[string]string {
	view := []map[string]string{}
	if s.Linked == nil {
		return view
	}
	s.Linked.mu.Lock()
	defer s.Linked.mu.Unlock()
	for _, u := range s.Linked.users {
		view = append(view, map[string]string{"id": u.ID, "username": u.Name})
	}
	return view
}

func (s *RequestManager) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)

	if r.Header.Get("X-Api-Key") != s.APIKey {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/user":
		if s.ListStatus != 0 {
			w.WriteHeader(s.ListStatus)
			return
		}
		take, _ := strconv.Atoi(r.URL.Query().Get("take"))
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		if take <= 0 {
			take = 10
		}
		end := min(skip+take, len(s.users))
		page := []requestUser{}
		if skip < len(s.users) {
			page = s.users[skip:end]
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"pageInfo": map[string]int{
				"pages":    (len(s.users) + take - 1) / take,
				"pageSize": take,
				"results":  len(s.users),
				"page":     skip/take + 1,
			},
			"results": page,
		})

	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/settings/jellyfin/users":
		if s.JellyfinListStatus != 0 {
			w.WriteHeader(s.JellyfinListStatus)
			return
		}
		writeJSON(w, http.StatusOK, s.jellyfinView())

	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/user/import-from-jellyfin":
		if s.ImportStatus != 0 {
			w.WriteHeader(s.ImportStatus)
			return
		}
		var body struct {
			JellyfinUserIDs []string `json:"jellyfinUserIds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		imported := []requestUser{}
		for _, id := range body.JellyfinUserIDs {
			for _, ju := range s.jellyfinView() {
				if ju["id"] == id {
					s.nextID++
					u := requestUser{ID: s.nextID, JellyfinUsername: ju["username"], JellyfinUserID: id}
					s.users = append(s.users, u)
					imported = append(imported, u)
				}
			}
		}
		writeJSON(w, http.StatusCreated, imported)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/v1/user/"):
		if s.DeleteStatus >= http.StatusMultipleChoices {
			w.WriteHeader(s.DeleteStatus)
			return
		}
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/api/v1/user/"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for i, u := range s.users {
			if u.ID == id {
				s.users = append(s.users[:i], s.users[i+1:]...)
				if s.DeleteStatus == http.StatusOK {
					writeJSON(w, http.StatusOK, u)
					return
				}
				w.WriteHeader(s.DeleteStatus)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
