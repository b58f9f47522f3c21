package csrf

// Hidden field names shared by form rendering and submission checks.
const (
	FieldNonce = "csrf_nonce"
	FieldToken = "csrf_token"
)

// HiddenFieldAdder is implemented by forms that can carry named hidden values.
type HiddenFieldAdder interface {
	AddHiddenField(name, value string)
}

// ApplyTo generates a pair and adds it to form under FieldNonce and FieldToken.
func (a *Authenticator) ApplyTo(form HiddenFieldAdder) (Pair, error) {
	pair, err := a.Generate()
	if err != nil {
		return Pair{}, err
	}
	form.AddHiddenField(FieldNonce, pair.Nonce)
	form.AddHiddenField(FieldToken, pair.Token)
	return pair, nil
}

// Apply binds a fresh pair signed with secret to form and returns the same
// form so calls can be chained.
func Apply[F HiddenFieldAdder](form F, secret string) (F, error) {
	if _, err := NewAuthenticator(secret).ApplyTo(form); err != nil {
		return form, err
	}
	return form, nil
}
