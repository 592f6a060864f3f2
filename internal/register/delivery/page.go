package delivery

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/SlavaShagalov/hotel-admin/internal/models"
)

const (
	pagePath   = "/admin/register"
	submitText = "Add Admin"
)

type PageProps struct {
	Form       models.RegistrationForm
	Message    models.StatusMessage
	Submitting bool
	CSRFToken  string
	// Refresh reloads the page after that many seconds; zero disables it.
	Refresh int
}

func RegisterPage(props PageProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>Admin Registration</title>`)
		if props.Refresh > 0 {
			b.WriteString(`<meta http-equiv="refresh" content="` + strconv.Itoa(props.Refresh) + `">`)
		}
		b.WriteString(`</head><body><div class="auth-container">`)

		if err := StatusLine(props.Message).Render(ctx, &b); err != nil {
			return err
		}

		b.WriteString(`<h2>Admin Registration Page</h2>`)
		b.WriteString(`<form method="POST" action="` + pagePath + `">`)
		b.WriteString(`<input type="hidden" name="` + csrfField + `" value="` + templ.EscapeString(props.CSRFToken) + `">`)
		for _, field := range models.FormFields {
			value := props.Form.Get(field)
			if field == models.FieldPassword {
				value = ""
			}
			if err := FormGroup(field, value).Render(ctx, &b); err != nil {
				return err
			}
		}

		b.WriteString(`<button type="submit"`)
		if props.Submitting {
			b.WriteString(` disabled`)
		}
		b.WriteString(`>` + submitText + `</button></form>`)

		b.WriteString(`<p class="register-link"> Already have an account? <a href="/login">Login</a></p>`)
		b.WriteString(`</div></body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// StatusLine renders nothing for a message without a kind.
func StatusLine(msg models.StatusMessage) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if !msg.Visible() {
			return nil
		}

		_, err := io.WriteString(w, `<p class="`+templ.EscapeString(string(msg.Kind))+`-message">`+
			templ.EscapeString(msg.Text)+`</p>`)
		return err
	})
}

func FormGroup(field models.Field, value string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		name := templ.EscapeString(string(field))

		_, err := io.WriteString(w, `<div class="form-group">`+
			`<label for="`+name+`">`+templ.EscapeString(field.Label())+`: </label>`+
			`<input id="`+name+`" type="`+field.InputType()+`" name="`+name+`" value="`+templ.EscapeString(value)+`" required>`+
			`</div>`)
		return err
	})
}
