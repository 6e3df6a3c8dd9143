// Package static embeds the default gallery page and the script and
// stylesheet it loads. The gallery server falls back to this page when the
// configured static root has no index.html.
package static
