package render

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"paylink.dev/app/pkg/view"
	"paylink.dev/app/templates"
	"paylink.dev/app/templates/shared"
)

// Load parses the embedded page templates and installs them on the engine.
func Load(r *gin.Engine) error {
	tmpl, err := template.New("pages").Funcs(shared.FuncMap()).ParseFS(templates.Pages, "pages/*.html")
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)
	return nil
}

func Page(c *gin.Context, status int, name string, p view.Page) {
	c.HTML(status, name, p)
}
