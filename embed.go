package inkblog

import (
	"embed"
	"io/fs"
)

// Assets holds the stylesheet served under /assets/.
//
//go:embed assets/*
var Assets embed.FS

func assetFS() fs.FS {
	sub, err := fs.Sub(Assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}
