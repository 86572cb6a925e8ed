package packet

// Packet keys classifying all server/client communication. Each key is
// annotated with the message sender (client, server, or 2-way). These
// strings are the protocol surface and must not change meaning.
const (
	// Account/network logistics.
	KeySecureEstablished = "SecureConnectionEstablished" // 2-way: symmetric channel confirmed

	KeyTryNewAccount  = "TryNewAccount"  // client: information for account creation
	KeyTryVerifyEmail = "TryVerifyEmail" // client: verification code to check for match
	KeyTryLogin       = "TryLogin"       // client: login credentials

	KeyEmailAlreadyTaken    = "EmailAlreadyTaken"    // server: registering email is already registered
	KeyUsernameAlreadyTaken = "UsernameAlreadyTaken" // server: registering username is already registered
	KeyEmailVerifySent      = "EmailVerifySent"      // server: verification code has been emailed

	KeyEmailVerifySuccess = "EmailVerifySuccess" // server: submitted code matches
	KeyEmailVerifyFail    = "EmailVerifyFail"    // server: submitted code doesn't match, with attempts left

	KeyLoginSuccess = "LoginSuccess" // server: login succeeded
	KeyLoginFail    = "LoginFail"    // server: identifier/password wrong

	// Player connect/disconnect.
	KeyPlayerConnected    = "PlayerConnected"    // server: a player joined, with display fields
	KeyPlayerDisconnected = "PlayerDisconnected" // server: a player left, with id
	KeyPlayerPostConnect  = "PlayerPostConnect"  // client: request replay of already-online players

	// Player character data.
	KeyCharacterInfo = "CharacterInfo" // server: the logging-in player's active character

	// In-game movement and actions.
	KeyMovementInput       = "M"  // 2-way: movement input change, 2D vector
	KeyMovementJump        = "MJ" // 2-way: player jumped
	KeyMovementRoll        = "MR" // 2-way: player rolled
	KeyMovementToggleProne = "MP" // 2-way: player toggled prone

	KeyTransformPosition = "P" // 2-way: periodic position sync, Vector3
	KeyTransformRotation = "R" // 2-way: rotation change, float
)
