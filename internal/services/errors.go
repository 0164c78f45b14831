package services

// ValidationError marks a request rejected because of missing or malformed
// input. Handlers map it to a 400 response.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }
