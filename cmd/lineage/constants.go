package main

// DefaultTreeName is the tree used when --tree is not given.
const DefaultTreeName = "default"

// Valid export formats.
var validFormats = []string{"json", "csv", "markdown"}
