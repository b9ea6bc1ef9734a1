package mint

// Recipient holds the optional custom mint-to address.
//
// The custom flag only controls whether the address field is shown. Resolve
// honors non-empty text whether or not the flag is set.
type Recipient struct {
	custom bool
	text   string
}

// ToggleCustom shows or hides the custom address field. The stored text is
// kept either way.
func (r *Recipient) ToggleCustom(enabled bool) {
	r.custom = enabled
}

// SetAddressText stores text verbatim. No format or checksum validation.
func (r *Recipient) SetAddressText(text string) {
	r.text = text
}

// UseCustom reports whether the custom address field is shown.
func (r Recipient) UseCustom() bool { return r.custom }

// AddressText returns the raw custom address text.
func (r Recipient) AddressText() string { return r.text }

// Resolve returns the effective recipient: the custom text if non-empty,
// else the connected address, else "".
func (r Recipient) Resolve(connected string) string {
	if r.text != "" {
		return r.text
	}
	return connected
}
