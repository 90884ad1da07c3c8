package screen

// Dialog is the taunt dialog shown to the viewer. A nil Dialog means no
// dialog is open.
type Dialog interface {
	Kind() string
}

type DialogLoading struct{}

func (DialogLoading) Kind() string { return "loading" }

type DialogSuccess struct {
	Title   string
	Message string
}

func (DialogSuccess) Kind() string { return "success" }

type DialogError struct {
	Title   string
	Message string
}

func (DialogError) Kind() string { return "error" }

const (
	titleDenied  = "Oops"
	titleSuccess = "Success"
	titleFailure = "Error"
)

func deniedDialog(err error) Dialog {
	return DialogError{Title: titleDenied, Message: err.Error()}
}

func successDialog(targetName string) Dialog {
	return DialogSuccess{Title: titleSuccess, Message: "Taunt delivered to " + targetName}
}

func failureDialog(err error) Dialog {
	return DialogError{Title: titleFailure, Message: err.Error()}
}
