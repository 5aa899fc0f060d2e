package tsplot

import (
	"strings"

	"github.com/pkg/errors"
)

// Columns normalizes column names into a list: names are trimmed, and empty or
// repeated names are dropped.
func Columns(names ...string) []string {
	columns := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		columns = append(columns, name)
	}

	return columns
}

// ParseRequest parses a chart request from its textual form:
//
//	col1,col2[;title=Title][;ylabel=Label][;log]
//
// The returned request has no source.
func ParseRequest(spec string) (Request, error) {
	parts := strings.Split(spec, ";")

	var req Request

	req.Columns = Columns(strings.Split(parts[0], ",")...)

	if len(req.Columns) == 0 {
		return req, errors.Wrapf(ErrNoColumns, "invalid chart %q", spec)
	}

	for _, opt := range parts[1:] {
		k, v, _ := strings.Cut(opt, "=")

		switch strings.TrimSpace(k) {
		case "title":
			req.Title = v
		case "ylabel":
			req.YLabel = v
		case "log":
			req.Log = v == "" || v == "1" || v == "true"
		case "":
			// allow trailing semicolons
		default:
			return req, errors.Errorf("unknown chart option %q", k)
		}
	}

	return req, nil
}
