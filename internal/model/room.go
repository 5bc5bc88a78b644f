package model

// RoomTokenRequest asks for a room access grant.
type RoomTokenRequest struct {
	Identity string `json:"identity" binding:"required,min=1,max=128"`
	Room     string `json:"room" binding:"required,min=1,max=128"`
}

// Participant describes who the grant was minted for.
type Participant struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// RoomCredentials is everything a client needs to connect to the video transport.
type RoomCredentials struct {
	Token       string      `json:"token"`
	URL         string      `json:"url"`
	TurnServer  string      `json:"turnServer"`
	Participant Participant `json:"participant"`
}
