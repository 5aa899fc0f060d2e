package errpage

import (
	"net/http"

	"git.unix.lgbt/diamondburned/tsplot/cmd/tsplot-http/frontend"
)

var errpage = frontend.Templater.Register("errpage", "pages/errpage/errpage.html")

// Respond writes the error page with the given status code.
func Respond(w http.ResponseWriter, code int, err error) {
	w.WriteHeader(code)
	errpage.Execute(w, err)
}
