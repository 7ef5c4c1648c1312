package proc

import (
	"os/user"
	"strconv"
	"sync"
)

// Users resolves uids through the system user database and remembers the
// answers, including misses.
type Users struct {
	mu     sync.Mutex
	cache  map[int]string
	lookup func(uid string) (*user.User, error)
}

func NewUsers() *Users {
	return &Users{
		cache:  make(map[int]string),
		lookup: user.LookupId,
	}
}

func (u *Users) LookupUser(uid int) (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if name, ok := u.cache[uid]; ok {
		return name, name != ""
	}
	name := ""
	if usr, err := u.lookup(strconv.Itoa(uid)); err == nil {
		name = usr.Username
	}
	u.cache[uid] = name
	return name, name != ""
}
