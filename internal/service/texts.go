package service

import _ "embed"

//go:embed credit.md
var creditDocument string

const (
	defaultSystemPrompt = "You are a helpful assistant in a Telegram chat. Answer concisely and in the language of the user."

	startText = "Hi! I am an AI assistant.\n\n" +
		"Send me any message and I will answer it for 1 credit.\n" +
		"Use /image followed by a description to draw a picture for 3 credits.\n\n" +
		"/profile shows your balance, /credit explains pricing, /info tells more about me."

	infoText = "This bot answers questions with an OpenAI language model and draws pictures with an image model.\n\n" +
		"Reply to one of my messages to continue that thread. Voice notes, photos, videos and documents are answered from their caption."

	profileTemplate = "Your profile\n\nID: %d\nName: %s\nCredit: %d"

	notEnoughCreditText = "You don't have enough credit for this. Send /credit to see prices and how to top up."

	imagePromptTooShortText = "Please describe the picture in at least 3 words, for example: /image a red fox running"

	unsupportedKindText = "Sorry, I can't handle this type of message yet."

	imageCaption = "Generated by OpenAI DALL-E"

	internalErrorText = "Something went wrong, please try again later."
)
