// Package inmemrepos provides process-local repositories backed by maps,
// used by tests and local development without a database.
package inmemrepos

import (
	"sync"

	"github.com/praveengyadahalli143-byte/TechpG/core/admin"
	"github.com/praveengyadahalli143-byte/TechpG/core/chat"
	"github.com/praveengyadahalli143-byte/TechpG/core/notification"
	"github.com/praveengyadahalli143-byte/TechpG/core/project"
	"github.com/praveengyadahalli143-byte/TechpG/core/stats"
	"github.com/praveengyadahalli143-byte/TechpG/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users         map[string]user.User
	projects      map[string]project.Project
	updates       map[string]project.Update
	members       map[string]project.Member
	messages      map[string]chat.Message
	notifications map[string]notification.Notification
	admins        map[string]admin.AdminUser
	visitorStats  map[string]stats.VisitorStat
}

func Open() *DB {
	return &DB{
		users:         make(map[string]user.User),
		projects:      make(map[string]project.Project),
		updates:       make(map[string]project.Update),
		members:       make(map[string]project.Member),
		messages:      make(map[string]chat.Message),
		notifications: make(map[string]notification.Notification),
		admins:        make(map[string]admin.AdminUser),
		visitorStats:  make(map[string]stats.VisitorStat),
	}
}
