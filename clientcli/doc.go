// Package clientcli provides a client library for the bookshelf REST API.
//
// It covers account registration and login, and upload, download, listing,
// update and deletion of books. Requests are authenticated with the bearer
// token returned by login. The package includes profile-based configuration
// for managing connections to multiple servers.
//
// # Basic Usage
//
// Log in and upload a book:
//
//	client, err := clientcli.New(&clientcli.Config{Endpoint: "http://localhost:5000"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	session, err := client.Login(ctx, "ada@example.com", "secret")
//	if err != nil {
//		log.Fatal(err)
//	}
//	client.SetToken(session.Token)
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath: "./dune.epub",
//		Category:  "scifi",
//	})
//
// # Profile Configuration
//
// Profiles store an endpoint and the token from the last login:
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("home")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package clientcli
