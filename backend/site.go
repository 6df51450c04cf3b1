// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"errors"
	"slices"
)

// Site is one measurable (website) managed by the Sites Manager.
type Site struct {
	ID                 int      `json:"id"`
	Name               string   `json:"name"`
	URLs               []string `json:"urls"`
	Timezone           string   `json:"timezone"`
	Currency           string   `json:"currency"`
	Ecommerce          bool     `json:"ecommerce"`
	ExcludedParameters []string `json:"excludedParameters"`
	CreatedAt          string   `json:"createdAt"`
}

func (s *Site) normalize() {
	if s.URLs == nil {
		s.URLs = make([]string, 0)
	}
	if s.ExcludedParameters == nil {
		s.ExcludedParameters = make([]string, 0)
	}
	if s.Timezone == "" {
		s.Timezone = DefaultTimezone
	}
	if s.Currency == "" {
		s.Currency = DefaultCurrency
	}
}

// CommonSessionParameters are always excluded from tracked URLs.
var CommonSessionParameters = []string{
	"phpsessid", "jsessionid", "sessionid", "aspsessionid", "doing_wp_cron", "sid", "pk_vid",
}

// RecommendedParameters are query parameters that commonly carry personal
// data.
var RecommendedParameters = []string{
	"account", "accountnum", "address", "address1", "address2", "address3",
	"addressline1", "addressline2", "adres", "adresse", "age", "alter", "auth",
	"authpw", "bic", "billingaddress", "billingaddress1", "billingaddress2",
	"calle", "cardnumber", "cc", "ccc", "cccsc", "cccvc", "cccvv", "ccexpiry",
	"ccexpmonth", "ccexpyear", "ccname", "ccnumber", "cctype", "cell",
	"cellphone", "city", "clientid", "clientsecret", "company", "consumerkey",
	"consumersecret", "contrasenya", "contrase", "creditcard", "creditcardnumber",
	"cvc", "cvv", "dateofbirth", "debitcard", "direcci", "dob", "domain",
	"ebost", "email", "emailaddress", "emailadresse", "epos", "epost",
	"eposta", "exp", "familyname", "firma", "firstname", "formlogin", "fullname",
	"gender", "geschlecht", "gst", "gstnumber", "handynummer", "has_password",
	"iban", "ibanaccountnum", "ibanaccountnumber", "id", "identifier",
	"indirizzo", "kartennummer", "kennwort", "keyconsumerkey",
	"keyconsumersecret", "konto", "kontonr", "kontonummer", "kredietkaart",
	"kreditkarte", "kreditkartennr", "kreditkartennummer", "kvk", "kvknummer",
	"lastname", "login", "mail", "mobiili", "mobile", "mobilne", "nachname",
	"name", "nickname", "osoite", "parole", "pass", "passord", "password",
	"passwort", "pasword", "paswort", "paword", "phone", "pin", "plz",
	"postalcode", "postcode", "postleitzahl", "privatekey", "publickey", "pw",
	"pwd", "pword", "pwrd", "rue", "secret", "secretq", "secretquestion",
	"shippingaddress", "shippingaddress1", "shippingaddress2", "socialsec",
	"socialsecuritynumber", "socsec", "sokak", "ssn", "steuernummer", "strasse",
	"street", "surname", "swift", "tax", "taxnumber", "tel", "telefon",
	"telefonnr", "telefonnummer", "telefono", "telephone", "token", "token_auth",
	"tokenauth", "téléphone", "ulica", "user", "username", "vat",
	"vatnumber", "via", "vorname", "wachtwoord", "wagwoord", "webhooksecret",
	"website", "zip", "zipcode",
}

// GlobalSettings are defaults applied to every site.
type GlobalSettings struct {
	ExclusionType    string   `json:"exclusionType"`
	CustomParameters []string `json:"customParameters"`
	DefaultTimezone  string   `json:"defaultTimezone"`
	DefaultCurrency  string   `json:"defaultCurrency"`
}

// DefaultGlobalSettings returns the settings of a fresh installation.
func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		ExclusionType:    defaultExclusionType,
		CustomParameters: make([]string, 0),
		DefaultTimezone:  DefaultTimezone,
		DefaultCurrency:  DefaultCurrency,
	}
}

var (
	ErrSiteNotFound        = errors.New("site not found")
	ErrInvalidExclusion    = errors.New("invalid exclusion type")
	ErrInvalidSite         = errors.New("invalid site")
	ErrInvalidCustomParams = errors.New("invalid custom parameters")
	ErrInvalidSettings     = errors.New("invalid global settings")
)

// ExcludedParameters returns the parameters excluded under the current
// exclusion type.
func (g GlobalSettings) ExcludedParameters() []string {
	out := slices.Clone(CommonSessionParameters)
	switch g.ExclusionType {
	case ExclusionRecommendedPII:
		out = append(out, RecommendedParameters...)
	case ExclusionCustom:
		out = append(out, g.CustomParameters...)
	}
	return out
}
