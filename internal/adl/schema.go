package adl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block an ADL file may carry.
type fileRoot struct {
	Components  []*componentBlock  `hcl:"component,block"`
	Instances   []*instanceBlock   `hcl:"instance,block"`
	Connections []*connectionBlock `hcl:"connection,block"`
	Settings    []*settingsBlock   `hcl:"settings,block"`
}

// componentBlock declares a connector type. Its body is an open attribute
// set: thread counts plus arbitrary attribute defaults such as
// from_global_endpoint.
type componentBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// instanceBlock declares one component instance.
type instanceBlock struct {
	Name         string `hcl:"name,label"`
	Component    string `hcl:"component,optional"`
	AddressSpace string `hcl:"address_space,optional"`
}

// connectionBlock declares a typed connection with ordered end references
// of the form "instance.interface".
type connectionBlock struct {
	Name string   `hcl:"name,label"`
	Type string   `hcl:"type"`
	From []string `hcl:"from"`
	To   []string `hcl:"to"`
}

// settingsBlock carries the key/value configuration for one scope: an
// instance name or an end's "instance.interface" form.
type settingsBlock struct {
	Scope string   `hcl:"scope,label"`
	Body  hcl.Body `hcl:",remain"`
}
