package flow

// Presenter shows the outcome of a step to the user
type Presenter interface {
	// Alert reports a failure
	Alert(message string)
	// Notice reports progress or success
	Notice(message string)
	// Navigate sends the user to the page at url
	Navigate(url string)
}

// NopPresenter discards everything
type NopPresenter struct{}

func (NopPresenter) Alert(string)    {}
func (NopPresenter) Notice(string)   {}
func (NopPresenter) Navigate(string) {}
