package apps

import "github.com/pkg/browser"

// Desktop opens files, folders and URLs with the system default handler.
type Desktop struct{}

func (Desktop) OpenPath(path string) error { return browser.OpenFile(path) }

func (Desktop) OpenURL(url string) error { return browser.OpenURL(url) }
