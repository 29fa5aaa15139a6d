package portal

import (
	"fmt"
	"strings"
)

// Portal URLs.
const (
	HomeURL      = "https://srienlinea.sri.gob.ec/sri-en-linea/inicio/NAT"
	ProfileURL   = "https://srienlinea.sri.gob.ec/sri-en-linea/contribuyente/perfil"
	ReceivedURL  = "https://srienlinea.sri.gob.ec/comprobantes-electronicos-internet/pages/consultas/recibidos/comprobantesRecibidos.jsf?&contextoMPT=https://srienlinea.sri.gob.ec/tuportal-internet&pathMPT=Facturaci%F3n%20Electr%F3nica&actualMPT=Comprobantes%20electr%F3nicos%20recibidos%20&linkMPT=%2Fcomprobantes-electronicos-internet%2Fpages%2Fconsultas%2Frecibidos%2FcomprobantesRecibidos.jsf%3F&esFavorito=S"
	profilePath  = "/sri-en-linea/contribuyente/perfil"
	loginTrigger = "Iniciar sesión"
)

// Authentication and navigation selectors.
const (
	SelProfileLabel = "label.titulo-campo.titulo-perfil"
	SelUser         = "#usuario"
	SelPassword     = "#password"
	SelLoginButton  = "#kc-login"
	SelMenuButton   = "#sri-menu"
	SelMenuHeader   = "a.ui-panelmenu-header-link"
	SelMenuItem     = "a.ui-menuitem-link"
	SelReceivedHref = "a[href*='accederAplicacion.jspa'][href*='redireccion=57']"

	MenuBilling  = "FACTURACIÓN ELECTRÓNICA"
	MenuReceived = "Comprobantes electrónicos recibidos"
)

// Received-documents form selectors.
const (
	SelYear         = `#frmPrincipal\:ano`
	SelMonth        = `#frmPrincipal\:mes`
	SelDay          = `#frmPrincipal\:dia`
	SelDocumentType = `#frmPrincipal\:tipoComprobante`
	SelSearch       = `#frmPrincipal\:btnBuscar`
	SelResultsPanel = `#frmPrincipal\:panelListaComprobantes`
	SelResultRows   = `#frmPrincipal\:panelListaComprobantes table tbody tr`
	SelResultCells  = "td"

	DocumentTypeInvoice = "Factura"
)

// Result table layout.
const (
	minResultCells = 6
	cellIssuer     = 1
	cellAccessKey  = 3
	cellEmission   = 5
)

// Elements whose visibility signals a captcha challenge.
var captchaSelectors = []string{
	"input[id*='captcha']",
	"input[name*='captcha']",
	"img[id*='captcha']",
	"img[src*='captcha']",
}

// Containers searched for captcha-related text.
var captchaTextSelectors = []string{"label", "span"}

// Warning banners that may mention a rejected captcha.
var warningSelectors = []string{
	`#formMessages\:messages .ui-messages-warn-summary`,
	`#frmMessages\:messages .ui-messages-warn-summary`,
	"div[id$=':messages'] .ui-messages-warn-summary",
	"div.ui-messages .ui-messages-warn-summary",
}

// Candidates for the "start session" control, most specific first.
var loginTriggerSelectors = []string{"pre", "a", "button", "span"}

// DownloadLinkSelector addresses the XML download link of a result row.
func DownloadLinkSelector(rowIndex int) string {
	return fmt.Sprintf(`#frmPrincipal\:tablaCompRecibidos\:%d\:lnkXml`, rowIndex)
}

// IsLoginRedirect reports whether url belongs to the authentication flow.
// A blank URL counts as a redirect.
func IsLoginRedirect(url string) bool {
	u := strings.ToLower(strings.TrimSpace(url))
	if u == "" {
		return true
	}
	return strings.Contains(u, "/auth/realms/") ||
		strings.Contains(u, "openid-connect") ||
		strings.Contains(u, "login")
}
