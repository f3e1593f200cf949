package native

import (
	"plugin"
)

// pluginLoad opens a Go plugin and looks up symbols in it. Go cannot
// unload plugins, so the unload function only forgets the handles.
func pluginLoad(host string, symbols []string) ([]any, func() error, error) {
	plug, err := plugin.Open(host)
	if err != nil {
		return nil, nil, err
	}
	handles := make([]any, 0, len(symbols))
	for _, name := range symbols {
		sym, err := plug.Lookup(name)
		if err != nil {
			return nil, nil, err
		}
		handles = append(handles, sym)
	}
	return handles, func() error { return nil }, nil
}
