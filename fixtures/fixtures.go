package fixtures

import (
	_ "embed"
)

//go:embed config/launchbox.yaml.template
var ConfigTemplate []byte

//go:embed config/kernels.yaml.template
var KernelsTemplate []byte
