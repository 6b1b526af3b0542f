// Package translation translates between French and Wolof with a
// fine-tuned sequence-to-sequence checkpoint. The input is prefixed with the
// same task prompt used during training, tokenized, and handed to a
// Generator that runs the model. Local checkpoints can be published to the
// Hugging Face Hub.
package translation
