package jellyfin

// --- Authentication Types ---

type authRequest struct {
	Username string `json:"Username"`
	Pw       string `json:"Pw"`
}

type userDTO struct {
	ID         string `json:"Id"`
	Name       string `json:"Name"`
	ServerID   string `json:"ServerId"`
	ServerName string `json:"ServerName"`
}

type authResponse struct {
	User        userDTO `json:"User"`
	AccessToken string  `json:"AccessToken"`
	ServerID    string  `json:"ServerId"`
}

// --- Server Info Types ---

// PublicInfo is the unauthenticated /System/Info/Public response.
type PublicInfo struct {
	ServerName string `json:"ServerName"`
	Version    string `json:"Version"`
	ID         string `json:"Id"`
}

// --- Library Types ---

type viewsResponse struct {
	Items []libraryItem `json:"Items"`
}

type libraryItem struct {
	ID             string `json:"Id"`
	Name           string `json:"Name"`
	CollectionType string `json:"CollectionType"`
}

// --- Photo Item Types ---

type itemsResponse struct {
	Items            []photoItem `json:"Items"`
	TotalRecordCount int         `json:"TotalRecordCount"`
}

type photoItem struct {
	ID           string `json:"Id"`
	Name         string `json:"Name"`
	Type         string `json:"Type"`
	Path         string `json:"Path"`
	Width        int    `json:"Width"`
	Height       int    `json:"Height"`
	PremiereDate string `json:"PremiereDate"`
	DateCreated  string `json:"DateCreated"`
	ImageTags    struct {
		Primary string `json:"Primary"`
	} `json:"ImageTags"`
	UserData struct {
		Rating     *int `json:"Rating"`
		IsFavorite bool `json:"IsFavorite"`
	} `json:"UserData"`
	MediaSources []struct {
		Path string `json:"Path"`
		Size int64  `json:"Size"`
	} `json:"MediaSources"`
}
