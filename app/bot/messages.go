package bot

// User-facing texts.
const (
	msgWelcome = "Hello! 🎬\n" +
		"Send me the CODE from the reel and I will send you the video.\n\n" +
		"Example: 34 56 23"

	msgInvalidCode = "❗ Please send the code using digits. Example: 34 56 23"

	msgSubscribe = "🎬 To get the video, join our channel first.\n" +
		"Once you have joined, press 🔁 Check."
	msgStillNotMember = "❌ We can't see your subscription yet.\n" +
		"Join the channel and press Check again."

	msgNotFound = "❌ No video was found for this code.\n" +
		"The code may be wrong. Please check it and send it again."
	msgNotFoundResend = "❌ No video was found for this code. Please send the code again."
	msgNoPending      = "No code found. Please send your code again."
	msgConfirmed      = "✅ Subscription confirmed! Sending your video…"

	captionDelivered = "✅ Here is your video!"

	btnJoin  = "✅ Join the channel"
	btnCheck = "🔁 Check"

	msgStagedHead = "✅ Video received.\nfile_id:\n"
	msgStagedTail = "\n\nTo attach it to a code:\n" +
		"/bind CODE\n" +
		"Example: /bind 345623"
	msgStageFailed = "⚠️ Could not keep this video. Please send it again."

	msgBindUsage      = "❗ Example: /bind 3"
	msgBindDigitsOnly = "❗ The code must contain digits only. Example: /bind 78"
	msgBindNoMedia    = "❗ Send a video first, then use /bind."
	msgBoundFmt       = "✅ Video attached to code %s."
	msgBindFailed     = "⚠️ Could not save the binding. Please try again later."

	msgSlowDown = "⏳ Too many messages. Please wait a second and send it again."

	msgStatsFmt   = "📊 Codes bound: %d"
	msgStatsError = "⚠️ Could not read statistics right now."
)
