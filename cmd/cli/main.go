package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "requests":
		handleRequests(args)
	case "reports":
		handleReports(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: bloodlink auth <register|login|logout|who|profile>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		registerDonor(args[1:])
	case "login":
		loginDonor(args[1:])
	case "logout":
		logoutDonor()
	case "who":
		whoAmI()
	case "profile":
		showProfile()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleRequests(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: bloodlink requests <list|get>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listBloodRequests(args[1:])
	case "get":
		getBloodRequest(args[1:])
	default:
		fmt.Printf("unknown requests command: %s\n", subCmd)
	}
}

func handleReports(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: bloodlink reports <list>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listReports(args[1:])
	default:
		fmt.Printf("unknown reports command: %s\n", subCmd)
	}
}

// Auth commands
func registerDonor(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	fullName := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	phone := fs.String("phone", "", "phone number")
	dob := fs.String("dob", "", "date of birth (RFC 3339, e.g. 1995-01-10T00:00:00Z)")
	gender := fs.String("gender", "", "gender (Male, Female, Other)")
	bloodGroup := fs.String("blood-group", "", "blood group (e.g. O+)")
	weight := fs.Float64("weight", 0, "weight in kg")
	address := fs.String("address", "", "address")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" || *fullName == "" {
		fmt.Println("Error: name, email, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]any{
		"fullName":        *fullName,
		"email":           *email,
		"phoneNumber":     *phone,
		"dateOfBirth":     *dob,
		"gender":          *gender,
		"bloodGroup":      *bloodGroup,
		"weight":          *weight,
		"address":         *address,
		"password":        *password,
		"confirmPassword": *password,
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/donor/register", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Donor registered: %s\n", *email)
		if token, ok := result["token"].(string); ok {
			saveToken(token)
		}
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

func loginDonor(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/donor/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s\n", *email)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logoutDonor() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", token[:20])
}

func showProfile() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/donor/profile", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var donor map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&donor)
	if resp.StatusCode != 200 {
		fmt.Printf("✗ Profile fetch failed: %v\n", donor)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tVALUE")
	for _, field := range []string{"fullName", "email", "phoneNumber", "bloodGroup", "weight"} {
		fmt.Fprintf(w, "%s\t%v\n", field, donor[field])
	}
	w.Flush()
}

// Blood request commands
func listBloodRequests(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	urgency := fs.String("urgency", "", "filter by urgency level")
	bloodGroup := fs.String("blood-group", "", "filter by blood group")
	page := fs.Int("page", 1, "page number")

	fs.Parse(args)

	url := fmt.Sprintf("%s/blood-requests?page=%d", getAPIURL(), *page)
	if *urgency != "" {
		url += "&urgencyLevel=" + *urgency
	}
	if *bloodGroup != "" {
		url += "&bloodGroup=" + *bloodGroup
	}

	resp, err := http.Get(url)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result struct {
		BloodRequests []map[string]interface{} `json:"bloodRequests"`
		TotalPages    int                      `json:"totalPages"`
		CurrentPage   int                      `json:"currentPage"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPATIENT\tGROUP\tURGENCY\tUNITS\tHOSPITAL")
	for _, r := range result.BloodRequests {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\n",
			r["id"], r["patientName"], r["bloodGroup"], r["urgencyLevel"], r["unitsNeeded"], r["hospitalName"])
	}
	w.Flush()
	fmt.Printf("Page %d of %d\n", result.CurrentPage, result.TotalPages)
}

func getBloodRequest(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: bloodlink requests get <request-id>")
		return
	}

	resp, err := http.Get(getAPIURL() + "/blood-requests/" + args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var body map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != 200 {
		fmt.Printf("✗ Fetch failed: %v\n", body)
		return
	}

	pretty, _ := json.MarshalIndent(body, "", "  ")
	fmt.Println(string(pretty))
}

// Report commands
func listReports(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	category := fs.String("category", "", "filter by report category")
	page := fs.Int("page", 1, "page number")

	fs.Parse(args)

	url := fmt.Sprintf("%s/reports?page=%d", getAPIURL(), *page)
	if *category != "" {
		url += "&category=" + *category
	}

	resp, err := http.Get(url)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result struct {
		Reports     []map[string]interface{} `json:"reports"`
		TotalPages  int                      `json:"totalPages"`
		CurrentPage int                      `json:"currentPage"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tCATEGORY\tANONYMOUS\tCREATED")
	for _, r := range result.Reports {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n",
			r["id"], r["userType"], r["reportCategory"], r["anonymous"], r["createdAt"])
	}
	w.Flush()
	fmt.Printf("Page %d of %d\n", result.CurrentPage, result.TotalPages)
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("BLOODLINK_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api/v1"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.bloodlink/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.bloodlink", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`BloodLink CLI

Usage:
  bloodlink <command> [options]

Commands:
  auth      Donor authentication (register, login, logout, who, profile)
  requests  Blood request operations (list, get)
  reports   Report operations (list)
  help      Show this help message

Environment Variables:
  BLOODLINK_API    API endpoint (default: http://localhost:8080/api/v1)

Examples:
  bloodlink auth register -name "Alice Donor" -email alice@example.com -password secret123 \
    -phone "+1 234 567 8901" -dob 1995-01-10T00:00:00Z -gender Female -blood-group O+ \
    -weight 62 -address "12 Example Street, Springfield"
  bloodlink auth login -email alice@example.com -password secret123
  bloodlink requests list -urgency Critical
  bloodlink reports list -category fraud
`)
}
