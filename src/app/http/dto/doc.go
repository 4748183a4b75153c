// Package dto contains the form payloads and page view models.
//
// Every page is rendered from one view model. The same value is written as
// HTML through the page template or as JSON when the client asks for it, so
// JSON tags here define the JSON shape of each page.
//
// Naming convention:
//   - Form types: <Action>Form (e.g., JokeForm)
//   - Page types: <Page>Page (e.g., JokePage)
package dto
