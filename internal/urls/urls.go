package urls

// Documentation URLs for guides and troubleshooting
// All URLs point to the documentation site at https://muurk.github.io/printbridge/

// GettingStarted is the quick start guide for embedding the service
// in a host application and making the first print call.
const GettingStarted = "https://muurk.github.io/printbridge/getting-started/overview/"

// CUPSSetup covers installing and configuring CUPS on Linux and macOS,
// including adding print queues and verifying them with lpstat.
const CUPSSetup = "https://muurk.github.io/printbridge/backends/cups-setup/"

// WindowsPrinting covers the Windows backend, spooler requirements,
// and the PowerShell execution policy notes.
const WindowsPrinting = "https://muurk.github.io/printbridge/backends/windows/"

// ServiceStartup explains the subprocess handshake, the --output-port
// flag, and how hosts should locate the service binary.
const ServiceStartup = "https://muurk.github.io/printbridge/integration/service-startup/"

// TroubleshootingGuide provides solutions to common issues
// encountered with printers, the service, and the client library.
const TroubleshootingGuide = "https://muurk.github.io/printbridge/troubleshooting/"

// APIReference documents every HTTP route, request body, and
// response envelope exposed by the service.
const APIReference = "https://muurk.github.io/printbridge/api/reference/"
