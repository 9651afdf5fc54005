// Package onboarding is the organization onboarding action. A logo, when
// given, seeds the brand colours and is uploaded before the organization is
// created.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/wiz/internal/core/action"
	"github.com/colonyops/wiz/internal/core/gateway"
	"github.com/colonyops/wiz/internal/core/rgb"
	"github.com/colonyops/wiz/internal/core/sampler"
	"github.com/colonyops/wiz/internal/core/wizard"
)

const ID = "onboarding"

// Session keys. Organization fields use the payload's JSON names.
const (
	KeyName      = "name"
	KeyType      = "type"
	KeyCity      = "city"
	KeyState     = "state"
	KeyCountry   = "country"
	KeyPrimary   = "primary_color"
	KeySecondary = "secondary_color"
	KeyLogo      = "logo_path"
	KeyContact   = "contact_name"
	KeyEmail     = "contact_email"
	KeyPhone     = "contact_phone"

	KeyOrgID        = "organization_id"
	KeyContactSaved = "contact_saved"
	KeyContactError = "contact_error"
)

var textFields = map[string]string{
	"name":    KeyName,
	"type":    KeyType,
	"city":    KeyCity,
	"state":   KeyState,
	"country": KeyCountry,
	"contact": KeyContact,
	"phone":   KeyPhone,
}

const detailsHelp = `name|type|city|state|country <text>
logo <path>               use a logo file and pick brand colours from it
primary|secondary <hex>   set a brand colour
contact|email|phone <text>  optional primary contact`

// Definition returns the onboarding action.
func Definition() action.Definition {
	return action.Definition{
		ID:          ID,
		Title:       "Onboarding",
		Description: "Add a new organization and its primary contact",
		Steps: []action.Step{
			{
				Type:   wizard.StepChoose,
				Title:  "Details",
				Help:   detailsHelp,
				View:   view,
				Handle: handle,
				Ready:  ready,
			},
			{
				Type:  wizard.StepConfirm,
				Title: "Create",
				View: func(st action.State) string {
					return "Create this organization?\n\n" + view(st)
				},
			},
			{
				Type:  wizard.StepDone,
				Title: "Welcome",
				View:  viewDone,
			},
		},
		Submit: submit,
	}
}

func get(st action.State, key string) string {
	return wizard.GetOr(st.Session, key, "")
}

func handle(st action.State, cmd action.Command) (action.Reply, error) {
	if key, ok := textFields[cmd.Name]; ok {
		v := strings.TrimSpace(cmd.Rest)
		return action.Reply{Set: map[string]any{key: v}, Info: cmd.Name + ": " + v}, nil
	}

	switch cmd.Name {
	case "email":
		v := strings.TrimSpace(cmd.Rest)
		if v != "" && !strings.Contains(v, "@") {
			return action.Reply{}, fmt.Errorf("email: %q is not an address", v)
		}
		return action.Reply{Set: map[string]any{KeyEmail: v}, Info: "email: " + v}, nil
	case "primary", "secondary":
		c, err := rgb.ParseHex(cmd.Arg(0))
		if err != nil {
			return action.Reply{}, err
		}
		key := KeyPrimary
		if cmd.Name == "secondary" {
			key = KeySecondary
		}
		return action.Reply{Set: map[string]any{key: c.Hex()}, Info: cmd.Name + ": " + c.Hex()}, nil
	case "logo":
		return useLogo(st, strings.TrimSpace(cmd.Rest))
	}
	return action.Reply{}, fmt.Errorf("unknown command %q", cmd.Name)
}

// useLogo records the logo and replaces the brand colours with its dominant
// colours.
func useLogo(st action.State, path string) (action.Reply, error) {
	if path == "" {
		return action.Reply{Set: map[string]any{KeyLogo: ""}, Info: "Logo cleared"}, nil
	}

	ext, err := sampler.ExtractFile(st.Fs, path, st.Sampling)
	if err != nil {
		return action.Reply{}, err
	}

	primary, secondary := ext.Apply(get(st, KeyPrimary), get(st, KeySecondary))
	reply := action.Reply{
		Set: map[string]any{
			KeyLogo:      path,
			KeyPrimary:   primary,
			KeySecondary: secondary,
		},
		Info: "Logo: " + filepath.Base(path),
	}
	if ext.Empty() {
		reply.Warn = "No usable colours found in the logo; brand colours unchanged"
	} else {
		reply.Info += fmt.Sprintf(" (brand colours %s / %s)", primary, orDash(secondary))
	}
	return reply, nil
}

func ready(st action.State) error {
	var errs criterio.FieldErrorsBuilder
	if get(st, KeyName) == "" {
		errs = errs.Append(KeyName, errors.New("organization name is required"))
	}
	if get(st, KeyContact) == "" && (get(st, KeyEmail) != "" || get(st, KeyPhone) != "") {
		errs = errs.Append(KeyContact, errors.New("contact details need a contact name"))
	}
	return errs.ToError()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func view(st action.State) string {
	var b strings.Builder
	rows := []struct{ label, key string }{
		{"Name", KeyName},
		{"Type", KeyType},
		{"City", KeyCity},
		{"State", KeyState},
		{"Country", KeyCountry},
		{"Primary", KeyPrimary},
		{"Secondary", KeySecondary},
		{"Logo", KeyLogo},
		{"Contact", KeyContact},
		{"Email", KeyEmail},
		{"Phone", KeyPhone},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "%-10s %s\n", r.label, orDash(get(st, r.key)))
	}
	return b.String()
}

func viewDone(st action.State) string {
	out := get(st, KeyName) + " is set up."
	if wizard.GetOr(st.Session, KeyContactSaved, false) {
		out += "\nContact " + get(st, KeyContact) + " added."
	}
	if msg := get(st, KeyContactError); msg != "" {
		out += "\nThe contact could not be saved: " + msg
	}
	return out
}

// Payloads builds the organization and contact payloads from the session.
func Payloads(st action.State) (gateway.OrganizationPayload, *gateway.ContactPayload) {
	org := gateway.OrganizationPayload{
		Name:           get(st, KeyName),
		Type:           get(st, KeyType),
		City:           get(st, KeyCity),
		State:          get(st, KeyState),
		Country:        get(st, KeyCountry),
		PrimaryColor:   get(st, KeyPrimary),
		SecondaryColor: get(st, KeySecondary),
	}
	if get(st, KeyContact) == "" {
		return org, nil
	}
	return org, &gateway.ContactPayload{
		Name:  get(st, KeyContact),
		Email: get(st, KeyEmail),
		Phone: get(st, KeyPhone),
	}
}

func submit(ctx context.Context, st action.State) (action.Result, error) {
	org, contact := Payloads(st)

	if path := get(st, KeyLogo); path != "" {
		ref, err := uploadLogo(ctx, st, path)
		if err != nil {
			return action.Result{}, err
		}
		org.LogoRef = ref
	}

	res, err := gateway.Onboard(ctx, st.Gateway, org, contact)
	if err != nil {
		return action.Result{}, err
	}

	data := map[string]any{
		KeyOrgID:        res.Organization.ID,
		KeyContactSaved: res.Contact != nil,
	}
	msg := org.Name + " created"
	if res.ContactErr != nil {
		data[KeyContactError] = gateway.UserMessage(res.ContactErr)
		msg += "; contact was not saved"
	}
	return action.Result{Data: data, Message: msg}, nil
}

func uploadLogo(ctx context.Context, st action.State, path string) (string, error) {
	f, err := st.Fs.Open(path)
	if err != nil {
		return "", gateway.Wrap("upload logo", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", gateway.Wrap("upload logo", err)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", gateway.Wrap("upload logo", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", gateway.Wrap("upload logo", err)
	}

	ticket, err := st.Gateway.UploadAsset(ctx, gateway.AssetMeta{
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(head[:n]),
		Size:        info.Size(),
	})
	if err != nil {
		return "", gateway.Wrap("upload logo", err)
	}
	if err := st.Gateway.PutAsset(ctx, ticket.UploadURL, f); err != nil {
		return "", gateway.Wrap("upload logo", err)
	}
	return ticket.UploadID, nil
}
