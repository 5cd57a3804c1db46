package inbox

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Toast is a user-visible notification.
type Toast struct {
	Title       string
	Description string
	Variant     Variant
}

type Notifier interface {
	Notify(Toast)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

func errorToast(description string) Toast {
	return Toast{Title: "Error", Description: description, Variant: VariantDestructive}
}
