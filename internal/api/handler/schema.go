package handler

// --- Request / Response types ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"min=6,maxbytes=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// profileRequest mirrors the form fields of the profile editor; social links
// arrive flat and skills as a comma-separated list.
type profileRequest struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	Status         string `json:"status"         validate:"required"`
	GitHubUsername string `json:"githubusername"`
	Skills         string `json:"skills"         validate:"required"`
	YouTube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	LinkedIn       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// messageResponse is the {"msg": ...} body used for confirmations and most errors.
type messageResponse struct {
	Msg string `json:"msg"`
}

// errorsResponse is the {"errors": [...]} body used for validation and credential failures.
type errorsResponse struct {
	Errors []FieldMessage `json:"errors"`
}
