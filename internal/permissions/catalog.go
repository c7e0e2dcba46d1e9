package permissions

import (
	"fmt"
	"strings"
)

// Resources known to the permission catalog.
const (
	ResourceObjects = "objects"
	ResourceUsers   = "users"
	ResourceRoles   = "roles"
	ResourceGroups  = "groups"
	ResourceTypes   = "types"
	ResourceIcons   = "icons"
	ResourceSystem  = "system"
)

// Actions applicable to every regular resource.
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionManage = "manage"
)

// SystemAdmin is the irregular catalog entry outside the resource.action grid.
const SystemAdmin = "system.admin"

var (
	resources = []string{ResourceObjects, ResourceUsers, ResourceRoles, ResourceGroups, ResourceTypes, ResourceIcons}
	actions   = []string{ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionManage}
)

// Definition describes a single catalog entry.
type Definition struct {
	Name        string
	Resource    string
	Action      string
	Description string
}

var (
	catalog []Definition
	byName  map[string]Definition
)

func init() {
	catalog = make([]Definition, 0, len(resources)*len(actions)+1)
	for _, resource := range resources {
		for _, action := range actions {
			catalog = append(catalog, Definition{
				Name:        Name(resource, action),
				Resource:    resource,
				Action:      action,
				Description: fmt.Sprintf("%s %s", capitalize(action), resource),
			})
		}
	}
	catalog = append(catalog, Definition{
		Name:        SystemAdmin,
		Resource:    ResourceSystem,
		Action:      "admin",
		Description: "Full administrative access to the platform",
	})

	byName = make(map[string]Definition, len(catalog))
	for _, def := range catalog {
		byName[def.Name] = def
	}
}

// Name builds the canonical "<resource>.<action>" permission name.
func Name(resource, action string) string {
	return resource + "." + action
}

// Split breaks a permission name into resource and action.
func Split(name string) (resource, action string, ok bool) {
	idx := strings.IndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return "", "", false
	}
	return name[:idx], name[idx+1:], true
}

// Catalog returns a copy of every catalog definition.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the definition for a permission name when it exists.
func Lookup(name string) (Definition, bool) {
	def, ok := byName[name]
	return def, ok
}

// IsKnown reports whether the name belongs to the catalog.
func IsKnown(name string) bool {
	_, ok := byName[name]
	return ok
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
