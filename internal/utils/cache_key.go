package utils

import (
	"strconv"
	"strings"

	"github.com/geocoder89/userdesk/internal/domain/user"
)

// BuildUsersListCacheKey is stable for equal filters; limit 0 marks the
// unpaginated export.
func BuildUsersListCacheKey(page int, f user.ListFilter) string {
	s := ""
	if f.Search != nil {
		s = strings.ToLower(strings.TrimSpace(*f.Search))
	}
	r := ""
	if f.Role != nil {
		r = string(*f.Role)
	}
	st := ""
	if f.Status != nil {
		st = string(*f.Status)
	}

	return "users:list:v1:page=" + strconv.Itoa(page) +
		":limit=" + strconv.Itoa(f.Limit) +
		":role=" + r +
		":status=" + st +
		":q=" + strconv.Quote(s)
}
