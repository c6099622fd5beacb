// Package audio plays synthesized speech.
//
// Speech engines hand back MP3. DecodeMP3 converts it to raw signed 16-bit
// little endian PCM with ffmpeg, and Player writes that PCM to the default
// output device through oto.
package audio
