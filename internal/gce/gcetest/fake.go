// Package gcetest provides an in-memory Compute Engine API for tests.
//
// Fake serves the subset of the Compute REST API that gcevm calls: image
// family lookup, instance insert, list and delete, and zone operation gets.
// Point a client at it with an endpoint override and no authentication.
package gcetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	compute "google.golang.org/api/compute/v1"
)

// Fake is a minimal in-memory Compute Engine API. Fields may be set up
// before the first request; use Lock and Unlock to touch them while a
// server is running.
type Fake struct {
	mu sync.Mutex

	// Images maps "project/family" to a self link
	Images map[string]string
	// Instances maps "zone/name" to the stored instance
	Instances map[string]*compute.Instance
	// Operations maps operation name to the statuses returned on successive gets
	Operations map[string][]*compute.Operation
	// PageSize limits list results per page (0 = unlimited)
	PageSize int
	// FailWith forces every request to fail with this HTTP status
	FailWith int

	// Call tracking
	Inserted   []*compute.Instance
	RequestIDs []string
	ListCalls  []string
	OpGets     map[string]int

	nextOp int
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		Images:     map[string]string{},
		Instances:  map[string]*compute.Instance{},
		Operations: map[string][]*compute.Operation{},
		OpGets:     map[string]int{},
	}
}

// Start serves f until the test ends.
func (f *Fake) Start(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return srv
}

// Lock locks the fake's state.
func (f *Fake) Lock() { f.mu.Lock() }

// Unlock unlocks the fake's state.
func (f *Fake) Unlock() { f.mu.Unlock() }

// AddInstance stores a RUNNING instance with one network interface.
func (f *Fake) AddInstance(zone, name, internal, external string) {
	nic := &compute.NetworkInterface{NetworkIP: internal}
	if external != "" {
		nic.AccessConfigs = []*compute.AccessConfig{{NatIP: external}}
	}
	f.Instances[zone+"/"+name] = &compute.Instance{
		Name:              name,
		Zone:              "https://www.googleapis.com/compute/v1/projects/p/zones/" + zone,
		Status:            "RUNNING",
		NetworkInterfaces: []*compute.NetworkInterface{nic},
	}
}

// NextOperationName returns the name the next insert or delete operation
// will get, so a test can script its statuses in Operations beforehand.
func (f *Fake) NextOperationName() string {
	return fmt.Sprintf("operation-%d", f.nextOp+1)
}

// newOperation returns a PENDING operation. Unless Operations already holds
// a script for it, later gets report DONE.
func (f *Fake) newOperation(zone string) *compute.Operation {
	f.nextOp++
	name := fmt.Sprintf("operation-%d", f.nextOp)
	op := &compute.Operation{
		Name:   name,
		Status: "PENDING",
		Zone:   "https://www.googleapis.com/compute/v1/projects/p/zones/" + zone,
	}
	if _, ok := f.Operations[name]; !ok {
		f.Operations[name] = []*compute.Operation{{Name: name, Status: "DONE"}}
	}
	return op
}

func (f *Fake) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailWith != 0 {
		writeError(w, f.FailWith, "forced failure")
		return
	}

	// projects/{p}/...
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "projects" {
		writeError(w, http.StatusNotFound, "unknown path "+r.URL.Path)
		return
	}
	project, rest := parts[1], parts[2:]

	switch {
	// global/images/family/{family}
	case len(rest) == 4 && rest[0] == "global" && rest[1] == "images" && rest[2] == "family" && r.Method == http.MethodGet:
		link, ok := f.Images[project+"/"+rest[3]]
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("The resource 'projects/%s/global/images/family/%s' was not found", project, rest[3]))
			return
		}
		writeJSON(w, &compute.Image{Name: rest[3], SelfLink: link})

	// zones/{zone}/instances
	case len(rest) == 3 && rest[0] == "zones" && rest[2] == "instances" && r.Method == http.MethodPost:
		var inst compute.Instance
		if err := json.NewDecoder(r.Body).Decode(&inst); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		zone := rest[1]
		if _, exists := f.Instances[zone+"/"+inst.Name]; exists {
			writeError(w, http.StatusConflict, fmt.Sprintf("The resource '%s' already exists", inst.Name))
			return
		}
		f.Inserted = append(f.Inserted, &inst)
		f.RequestIDs = append(f.RequestIDs, r.URL.Query().Get("requestId"))
		f.Instances[zone+"/"+inst.Name] = &inst
		writeJSON(w, f.newOperation(zone))

	case len(rest) == 3 && rest[0] == "zones" && rest[2] == "instances" && r.Method == http.MethodGet:
		f.ListCalls = append(f.ListCalls, r.URL.Query().Get("filter"))
		f.list(w, r, rest[1])

	// zones/{zone}/instances/{name}
	case len(rest) == 4 && rest[0] == "zones" && rest[2] == "instances" && r.Method == http.MethodDelete:
		key := rest[1] + "/" + rest[3]
		if _, ok := f.Instances[key]; !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("The resource 'projects/%s/zones/%s/instances/%s' was not found", project, rest[1], rest[3]))
			return
		}
		delete(f.Instances, key)
		writeJSON(w, f.newOperation(rest[1]))

	// zones/{zone}/operations/{op}
	case len(rest) == 4 && rest[0] == "zones" && rest[2] == "operations" && r.Method == http.MethodGet:
		seq, ok := f.Operations[rest[3]]
		if !ok {
			writeError(w, http.StatusNotFound, "operation not found")
			return
		}
		n := f.OpGets[rest[3]]
		f.OpGets[rest[3]] = n + 1
		if n >= len(seq) {
			n = len(seq) - 1
		}
		writeJSON(w, seq[n])

	default:
		writeError(w, http.StatusNotFound, "unhandled "+r.Method+" "+r.URL.Path)
	}
}

func (f *Fake) list(w http.ResponseWriter, r *http.Request, zone string) {
	filter := r.URL.Query().Get("filter")
	wantName := ""
	if filter != "" {
		field, value, ok := strings.Cut(filter, " = ")
		if !ok || field != "name" {
			writeError(w, http.StatusBadRequest, "invalid filter "+filter)
			return
		}
		wantName = value
	}

	var matched []*compute.Instance
	for key, inst := range f.Instances {
		if !strings.HasPrefix(key, zone+"/") {
			continue
		}
		if wantName != "" && inst.Name != wantName {
			continue
		}
		matched = append(matched, inst)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	start := 0
	if tok := r.URL.Query().Get("pageToken"); tok != "" {
		_, _ = fmt.Sscanf(tok, "%d", &start)
	}
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	next := ""
	if f.PageSize > 0 && start+f.PageSize < len(matched) {
		end = start + f.PageSize
		next = fmt.Sprintf("%d", end)
	}

	writeJSON(w, &compute.InstanceList{Items: matched[start:end], NextPageToken: next})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": msg,
		},
	})
}
