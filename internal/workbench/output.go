package workbench

// ClipboardWrite asks the adapter to put Text on the system clipboard
type ClipboardWrite struct {
	Text string
}

// FileDownload asks the adapter to hand the user a file
type FileDownload struct {
	Name        string
	ContentType string
	Data        []byte
}

// DownloadName is the file name offered for a converted result
func DownloadName(targetLanguage string) string {
	switch targetLanguage {
	case "cpp":
		return "converted.cpp"
	case "":
		return "converted.txt"
	default:
		return "converted." + targetLanguage
	}
}

// Copy emits the displayed converter result for the clipboard. With nothing
// displayed it is a no-op and the status line is left alone.
func Copy(s State) (State, *ClipboardWrite) {
	if s.Flow != FlowConverter {
		return s, nil
	}
	text := s.OutputText()
	if text == "" {
		return s, nil
	}
	return s.withStatus(StatusSuccess, MsgCopied), &ClipboardWrite{Text: text}
}

// Download emits the displayed converter result as a text file
func Download(s State) (State, *FileDownload) {
	if s.Flow != FlowConverter {
		return s, nil
	}
	text := s.OutputText()
	if text == "" {
		return s, nil
	}
	return s.withStatus(StatusSuccess, MsgDownloaded), &FileDownload{
		Name:        DownloadName(s.Output.Language),
		ContentType: "text/plain",
		Data:        []byte(text),
	}
}

// Reset clears the review editor, its mirror, the file selection and the
// review output, in that order. It also bumps Seq so a review still in
// flight cannot refill the output, and drops a pending Processing status.
func Reset(s State) State {
	if s.Flow != FlowReview {
		return s
	}
	s.Seq++
	s.Input = ""
	s.Mirror = ""
	s.FileName = ""
	s.Output = nil
	if s.Status.Kind == StatusProcessing {
		s = s.withStatus(StatusIdle, MsgIdle)
	}
	return s
}
