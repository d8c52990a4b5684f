package board_assets

import "embed"

//go:embed index.html board.js
var Assets embed.FS
