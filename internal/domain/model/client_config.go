package model

// ClientConfig is the per-publication configuration resolved from the
// backend at the start of each flow.
type ClientConfig struct {
	UseUpdatedOfferFlows      bool   `json:"useUpdatedOfferFlows" yaml:"use_updated_offer_flows"`
	PaySwgVersion             string `json:"paySwgVersion,omitempty" yaml:"pay_swg_version"`
	SkipAccountCreationScreen bool   `json:"skipAccountCreationScreen" yaml:"skip_account_creation_screen"`
}

// BasicPaySwgVersion is the provider SDK version that cannot run natively.
const BasicPaySwgVersion = "2"

// ForceDisableNative reports whether the provider must skip its native flow.
func (c ClientConfig) ForceDisableNative() bool {
	return c.PaySwgVersion == BasicPaySwgVersion
}
